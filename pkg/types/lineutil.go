package types

import (
	"bytes"
	"sort"
	"unicode/utf8"
)

// ComputeLineColumn converts a byte offset into a 1-based line and column.
// Columns count runes, so a Hangul syllable advances the column by one.
func ComputeLineColumn(content []byte, byteOffset int) (line, column int) {
	return NewLineIndex(content).Position(byteOffset)
}

// LineIndex answers offset-to-position queries for one blob without
// rescanning it for every match.
type LineIndex struct {
	content []byte
	starts  []int // byte offset of each line start
}

// NewLineIndex records the line starts of content.
func NewLineIndex(content []byte) *LineIndex {
	starts := []int{0}
	for i := 0; ; {
		j := bytes.IndexByte(content[i:], '\n')
		if j < 0 {
			break
		}
		i += j + 1
		starts = append(starts, i)
	}
	return &LineIndex{content: content, starts: starts}
}

// Position returns the 1-based line and column of byteOffset. Offsets past the
// end are clamped.
func (li *LineIndex) Position(byteOffset int) (line, column int) {
	if byteOffset > len(li.content) {
		byteOffset = len(li.content)
	}
	if byteOffset < 0 {
		byteOffset = 0
	}
	idx := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > byteOffset }) - 1
	return idx + 1, utf8.RuneCount(li.content[li.starts[idx]:byteOffset]) + 1
}

// Span converts a byte range into a SourceSpan.
func (li *LineIndex) Span(start, end int) SourceSpan {
	sl, sc := li.Position(start)
	el, ec := li.Position(end)
	return SourceSpan{
		Start: SourcePoint{Line: sl, Column: sc},
		End:   SourcePoint{Line: el, Column: ec},
	}
}
