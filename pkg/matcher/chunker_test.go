package matcher

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkContent_SmallFile(t *testing.T) {
	content := []byte("line1\nline2\nline3\n")

	chunks := ChunkContent(content, DefaultChunkConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, content, chunks[0].Content)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, len(content), chunks[0].EndOffset)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestChunkContent_EmptyContent(t *testing.T) {
	chunks := ChunkContent(nil, ChunkConfig{MaxChunkSize: 10, Overlap: 2})

	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0].Content)
}

func TestChunkContent_CoversContentWithOverlap(t *testing.T) {
	content := []byte(strings.Repeat("abcdefghij", 25)) // 250 bytes
	config := ChunkConfig{MaxChunkSize: 64, Overlap: 7}

	chunks := ChunkContent(content, config)
	require.Greater(t, len(chunks), 1)

	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, len(content), chunks[len(chunks)-1].EndOffset)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.LessOrEqual(t, len(c.Content), config.MaxChunkSize)
		assert.Equal(t, content[c.StartOffset:c.EndOffset], c.Content)
		if i > 0 {
			prev := chunks[i-1]
			assert.Greater(t, c.StartOffset, prev.StartOffset, "chunks must advance")
			assert.GreaterOrEqual(t, prev.EndOffset-c.StartOffset, config.Overlap)
		}
	}
}

func TestChunkContent_CutsOnRuneBoundaries(t *testing.T) {
	content := []byte(strings.Repeat("가나다라마바사", 40)) // 3-byte runes
	config := ChunkConfig{MaxChunkSize: 100, Overlap: 5}

	chunks := ChunkContent(content, config)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		assert.True(t, utf8.Valid(c.Content), "chunk %d splits a rune", c.Index)
	}
}

func TestChunkContent_WordAcrossBoundaryIsInSomeChunk(t *testing.T) {
	word := []byte("시발")
	filler := bytes.Repeat([]byte("가"), 30) // 90 bytes
	content := append(append(append([]byte{}, filler...), word...), filler...)
	config := ChunkConfig{MaxChunkSize: 93, Overlap: len(word) - 1}

	found := false
	for _, c := range ChunkContent(content, config) {
		if bytes.Contains(c.Content, word) {
			found = true
		}
	}
	assert.True(t, found)
}

func TestChunkContent_OverlapLargerThanChunk(t *testing.T) {
	content := []byte(strings.Repeat("x", 50))

	chunks := ChunkContent(content, ChunkConfig{MaxChunkSize: 10, Overlap: 100})

	require.NotEmpty(t, chunks)
	assert.Equal(t, len(content), chunks[len(chunks)-1].EndOffset)
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].StartOffset, chunks[i-1].StartOffset)
	}
}

func TestDefaultChunkConfig(t *testing.T) {
	config := DefaultChunkConfig()

	assert.Equal(t, 5*1024*1024, config.MaxChunkSize)
	assert.Zero(t, config.Overlap)
}
