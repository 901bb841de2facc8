package matcher

import "bytes"

// ExtractContext returns up to lines lines of content before start and after
// end. The results are copies, so keeping them does not pin content in
// memory. The match itself is not repeated in either side.
func ExtractContext(content []byte, start, end int, lines int) (before, after []byte) {
	if lines <= 0 || start < 0 || end > len(content) || start > end {
		return nil, nil
	}
	if b := contextBefore(content, start, lines); len(b) > 0 {
		before = bytes.Clone(b)
	}
	if a := contextAfter(content, end, lines); len(a) > 0 {
		after = bytes.Clone(a)
	}
	return before, after
}

// contextBefore walks back over lines newlines and returns everything from
// the start of that line up to start.
func contextBefore(content []byte, start, lines int) []byte {
	if start == 0 {
		return nil
	}
	pos := start
	for n := 0; n < lines; n++ {
		nl := bytes.LastIndexByte(content[:pos], '\n')
		if nl < 0 {
			return content[:start]
		}
		pos = nl
	}
	// pos is the newline ending the line before the match's line block;
	// step back once more to the start of that line.
	lineStart := bytes.LastIndexByte(content[:pos], '\n') + 1
	return content[lineStart:start]
}

// contextAfter returns the rest of the match's line plus lines-1 more lines,
// or lines full lines when the match ends exactly at a newline.
func contextAfter(content []byte, end, lines int) []byte {
	if end >= len(content) {
		return nil
	}
	from := end
	if content[end] == '\n' {
		from++
		if from >= len(content) {
			return nil
		}
	}
	pos := from
	for n := 0; n < lines; n++ {
		nl := bytes.IndexByte(content[pos:], '\n')
		if nl < 0 {
			return content[from:]
		}
		pos += nl + 1
	}
	return content[from:pos]
}
