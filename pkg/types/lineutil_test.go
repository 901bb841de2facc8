package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLineColumn(t *testing.T) {
	content := []byte("first line\n두 번째 줄\n\nlast")

	tests := []struct {
		name       string
		offset     int
		wantLine   int
		wantColumn int
	}{
		{"start", 0, 1, 1},
		{"middle of first line", 6, 1, 7},
		{"newline itself", 10, 1, 11},
		{"start of second line", 11, 2, 1},
		{"after one hangul syllable", 14, 2, 2},
		{"empty line", 26, 3, 1},
		{"last line", 27, 4, 1},
		{"past the end", 1000, 4, 5},
		{"negative", -5, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, col := ComputeLineColumn(content, tt.offset)
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantColumn, col)
		})
	}
}

func TestLineIndex_Span(t *testing.T) {
	content := []byte("ab\ncd\nef")
	li := NewLineIndex(content)

	span := li.Span(4, 7)
	assert.Equal(t, SourcePoint{Line: 2, Column: 2}, span.Start)
	assert.Equal(t, SourcePoint{Line: 3, Column: 2}, span.End)
}

func TestOffsetSpan(t *testing.T) {
	a := OffsetSpan{Start: 2, End: 5}
	assert.Equal(t, int64(3), a.Len())
	assert.True(t, a.Overlaps(OffsetSpan{Start: 4, End: 9}))
	assert.False(t, a.Overlaps(OffsetSpan{Start: 5, End: 9}))
	assert.False(t, a.Overlaps(OffsetSpan{Start: 0, End: 2}))
}
