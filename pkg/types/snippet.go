package types

// Snippet is a match with the surrounding lines of context.
type Snippet struct {
	Before   []byte
	Matching []byte
	After    []byte
}

// String joins the three parts.
func (s Snippet) String() string {
	return string(s.Before) + string(s.Matching) + string(s.After)
}
