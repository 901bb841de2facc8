package types

// OffsetSpan is the half-open byte range [Start, End).
type OffsetSpan struct {
	Start int64
	End   int64
}

// Len returns the number of bytes covered.
func (s OffsetSpan) Len() int64 {
	return s.End - s.Start
}

// Overlaps reports whether s and o share at least one byte.
func (s OffsetSpan) Overlaps(o OffsetSpan) bool {
	return s.Start < o.End && o.Start < s.End
}

// SourcePoint is a 1-based line and column. Columns count runes.
type SourcePoint struct {
	Line   int
	Column int
}

// SourceSpan is a start and end position.
type SourceSpan struct {
	Start SourcePoint
	End   SourcePoint
}

// Location is where a match sits, both as bytes and as line:column.
type Location struct {
	Offset OffsetSpan
	Source SourceSpan
}
