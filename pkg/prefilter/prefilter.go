package prefilter

import (
	"sort"

	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/cloudflare/ahocorasick"
)

// Prefilter uses Aho-Corasick to decide which word categories can possibly
// match a blob before a slower engine runs.
type Prefilter struct {
	matcher    *ahocorasick.Matcher
	keywords   []string                 // keyword at each index
	categories map[string][]string      // keyword -> categories of words with that text
	words      map[string][]*types.Word // keyword -> words with that text
}

// New creates a prefilter from words. Every word text is a keyword.
func New(words []*types.Word) *Prefilter {
	pf := &Prefilter{
		categories: make(map[string][]string),
		words:      make(map[string][]*types.Word),
	}

	for _, w := range words {
		if w == nil || w.Text == "" {
			continue
		}
		if _, ok := pf.words[w.Text]; !ok {
			pf.keywords = append(pf.keywords, w.Text)
		}
		pf.words[w.Text] = append(pf.words[w.Text], w)
		if !contains(pf.categories[w.Text], w.Category) {
			pf.categories[w.Text] = append(pf.categories[w.Text], w.Category)
		}
	}

	if len(pf.keywords) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.keywords)
	}
	return pf
}

// Filter returns the sorted categories with at least one word in content.
func (pf *Prefilter) Filter(content []byte) []string {
	seen := make(map[string]bool)
	var result []string
	for _, kw := range pf.hits(content) {
		for _, c := range pf.categories[kw] {
			if !seen[c] {
				seen[c] = true
				result = append(result, c)
			}
		}
	}
	sort.Strings(result)
	return result
}

// Candidates returns the words present in content, each once.
func (pf *Prefilter) Candidates(content []byte) []*types.Word {
	var result []*types.Word
	for _, kw := range pf.hits(content) {
		result = append(result, pf.words[kw]...)
	}
	return result
}

// Contains reports whether any keyword occurs in content.
func (pf *Prefilter) Contains(content []byte) bool {
	return pf.matcher != nil && pf.matcher.Contains(content)
}

// hits returns the distinct keywords found. MatchThreadSafe is used so one
// Prefilter can serve concurrent scans.
func (pf *Prefilter) hits(content []byte) []string {
	if pf.matcher == nil {
		return nil
	}
	idx := pf.matcher.MatchThreadSafe(content)
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, pf.keywords[i])
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
