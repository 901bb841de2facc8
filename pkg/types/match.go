package types

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
)

// Match is one occurrence of a word in a blob.
type Match struct {
	BlobID       BlobID
	StructuralID string // SHA-1(word_structural_id + '\0' + blob_id + '\0' + start + '\0' + end)
	FindingID    string // SHA-1(word_structural_id + '\0' + matched text)
	WordID       string
	Word         string // the word text as listed
	Category     string
	Severity     Severity
	Location     Location
	Matched      []byte // the bytes at Location.Offset
	Snippet      Snippet
}

// ComputeStructuralID derives a stable ID from the word and the match position.
func (m *Match) ComputeStructuralID(wordStructuralID string) string {
	h := sha1.New()
	h.Write([]byte(wordStructuralID))
	h.Write([]byte{0})
	h.Write(m.BlobID[:])
	h.Write([]byte{0})
	h.Write(strconv.AppendInt(nil, m.Location.Offset.Start, 10))
	h.Write([]byte{0})
	h.Write(strconv.AppendInt(nil, m.Location.Offset.End, 10))
	return hex.EncodeToString(h.Sum(nil))
}
