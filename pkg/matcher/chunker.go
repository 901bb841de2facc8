package matcher

import "unicode/utf8"

// ChunkConfig configures how large blobs are split for engines that scan
// chunk by chunk.
type ChunkConfig struct {
	MaxChunkSize int // Maximum size of a chunk in bytes (default: 5MB)
	Overlap      int // Bytes repeated at the start of the next chunk
}

// DefaultChunkConfig returns production defaults. Overlap is filled in by the
// engine from its longest word.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChunkSize: 5 * 1024 * 1024, // 5MB
	}
}

// Chunk is a window of a larger blob.
type Chunk struct {
	Content     []byte // sub-slice of the original content
	StartOffset int    // byte offset in the original content where this chunk starts
	EndOffset   int    // byte offset in the original content where this chunk ends
	Index       int    // chunk number (0-indexed)
}

// ChunkContent splits content into windows of at most MaxChunkSize bytes.
// Consecutive windows share at least Overlap bytes, so any word no longer
// than Overlap+1 bytes lies entirely inside some window. Cuts fall on rune
// boundaries.
func ChunkContent(content []byte, config ChunkConfig) []Chunk {
	if config.MaxChunkSize <= 0 || len(content) <= config.MaxChunkSize {
		return []Chunk{{Content: content, EndOffset: len(content)}}
	}
	overlap := min(max(config.Overlap, 0), config.MaxChunkSize/2)

	var chunks []Chunk
	start := 0
	for {
		end := min(start+config.MaxChunkSize, len(content))
		if end < len(content) {
			end = runeStart(content, end, start+1)
		}
		chunks = append(chunks, Chunk{
			Content:     content[start:end],
			StartOffset: start,
			EndOffset:   end,
			Index:       len(chunks),
		})
		if end == len(content) {
			return chunks
		}

		next := runeStart(content, end-overlap, start+1)
		if next <= start {
			next = end
		}
		start = next
	}
}

// runeStart moves pos back to the nearest rune boundary, but not below floor.
func runeStart(content []byte, pos, floor int) int {
	for i := 0; i < utf8.UTFMax && pos > floor && !utf8.RuneStart(content[pos]); i++ {
		pos--
	}
	return pos
}
