package prefilter

import (
	"testing"

	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWords() []*types.Word {
	return []*types.Word{
		{ID: "ko.1", Text: "시발", Category: "profanity"},
		{ID: "ko.2", Text: "병신", Category: "insult"},
		{ID: "en.1", Text: "damn", Category: "profanity"},
		{ID: "en.2", Text: "idiot", Category: "insult"},
	}
}

func TestPrefilter_MatchingCategory(t *testing.T) {
	pf := New(testWords())

	filtered := pf.Filter([]byte("오늘 날씨 시발 좋네"))

	require.Len(t, filtered, 1)
	assert.Equal(t, "profanity", filtered[0])
}

func TestPrefilter_MultipleCategoriesSorted(t *testing.T) {
	pf := New(testWords())

	filtered := pf.Filter([]byte("damn you idiot"))

	assert.Equal(t, []string{"insult", "profanity"}, filtered)
}

func TestPrefilter_NoMatch(t *testing.T) {
	pf := New(testWords())

	assert.Empty(t, pf.Filter([]byte("nothing to see here")))
	assert.False(t, pf.Contains([]byte("nothing to see here")))
}

func TestPrefilter_Candidates(t *testing.T) {
	pf := New(testWords())

	got := pf.Candidates([]byte("병신 idiot 병신"))

	ids := make([]string, 0, len(got))
	for _, w := range got {
		ids = append(ids, w.ID)
	}
	assert.ElementsMatch(t, []string{"ko.2", "en.2"}, ids)
}

func TestPrefilter_SharedTextAcrossCategories(t *testing.T) {
	words := []*types.Word{
		{ID: "a", Text: "crap", Category: "profanity"},
		{ID: "b", Text: "crap", Category: "vulgar"},
	}
	pf := New(words)

	assert.Equal(t, []string{"profanity", "vulgar"}, pf.Filter([]byte("what crap")))
	assert.Len(t, pf.Candidates([]byte("what crap")), 2)
}

func TestPrefilter_OverlappingKeywords(t *testing.T) {
	words := []*types.Word{
		{ID: "1", Text: "she", Category: "a"},
		{ID: "2", Text: "he", Category: "b"},
		{ID: "3", Text: "hers", Category: "c"},
	}
	pf := New(words)

	assert.Equal(t, []string{"a", "b", "c"}, pf.Filter([]byte("ushers")))
	assert.True(t, pf.Contains([]byte("ushers")))
}

func TestPrefilter_Empty(t *testing.T) {
	pf := New(nil)

	assert.Empty(t, pf.Filter([]byte("anything")))
	assert.Empty(t, pf.Candidates([]byte("anything")))
	assert.False(t, pf.Contains([]byte("anything")))
}

func TestPrefilter_SkipsEmptyWords(t *testing.T) {
	pf := New([]*types.Word{nil, {ID: "x", Text: "", Category: "c"}})

	assert.Nil(t, pf.matcher)
}
