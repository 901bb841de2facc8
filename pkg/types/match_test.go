package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch_ComputeStructuralID(t *testing.T) {
	blobID := ComputeBlobID([]byte("채팅 메시지"))
	at := func(start, end int64) *Match {
		return &Match{BlobID: blobID, Location: Location{Offset: OffsetSpan{Start: start, End: end}}}
	}

	id := at(3, 9).ComputeStructuralID("word-sid")
	assert.Len(t, id, 40)
	assert.Equal(t, id, at(3, 9).ComputeStructuralID("word-sid"))
	assert.NotEqual(t, id, at(4, 9).ComputeStructuralID("word-sid"))
	assert.NotEqual(t, id, at(3, 10).ComputeStructuralID("word-sid"))
	assert.NotEqual(t, id, at(3, 9).ComputeStructuralID("other-sid"))

	other := at(3, 9)
	other.BlobID = ComputeBlobID([]byte("different"))
	assert.NotEqual(t, id, other.ComputeStructuralID("word-sid"))
}

func TestComputeFindingID(t *testing.T) {
	a := ComputeFindingID("sid", []byte("시발"))
	assert.Len(t, a, 40)
	assert.Equal(t, a, ComputeFindingID("sid", []byte("시발")))
	assert.NotEqual(t, a, ComputeFindingID("sid", []byte("병신")))
	assert.NotEqual(t, a, ComputeFindingID("sid2", []byte("시발")))
}

func TestWord_ComputeStructuralID(t *testing.T) {
	w := Word{Text: "시발", Category: "profanity"}
	id := w.ComputeStructuralID()
	assert.Len(t, id, 40)

	sameText := Word{Text: "시발", Category: "slur"}
	assert.NotEqual(t, id, sameText.ComputeStructuralID())

	// The separator keeps category/text boundaries unambiguous.
	shifted := Word{Text: "발", Category: "profanity시"}
	assert.NotEqual(t, id, shifted.ComputeStructuralID())
}

func TestSeverity_Rank(t *testing.T) {
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
	assert.Equal(t, 0, Severity("unknown").Rank())
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "개새끼", NormalizeText("  개새끼\t\r"))
	assert.Equal(t, "", NormalizeText("   "))
}

func TestSnippet_String(t *testing.T) {
	s := Snippet{Before: []byte("a "), Matching: []byte("bad"), After: []byte(" word")}
	assert.Equal(t, "a bad word", s.String())
}
