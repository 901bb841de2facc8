package types

import (
	"crypto/sha1"
	"encoding/hex"
)

// Finding groups the matches of one word with the same matched text, across blobs.
type Finding struct {
	ID       string // SHA-1(word_structural_id + '\0' + text)
	WordID   string
	Category string
	Text     string
	Matches  []*Match
}

// ComputeFindingID derives the finding ID shared by every match of a word
// with the same matched text.
func ComputeFindingID(wordStructuralID string, text []byte) string {
	h := sha1.New()
	h.Write([]byte(wordStructuralID))
	h.Write([]byte{0})
	h.Write(text)
	return hex.EncodeToString(h.Sum(nil))
}
