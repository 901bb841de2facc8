package matcher

import (
	"fmt"

	"github.com/chulbong-kr/wordscan/pkg/dat"
	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/chulbong-kr/wordscan/pkg/wordlist"
)

// DATMatcher implements Matcher over a double-array Aho-Corasick automaton.
// All words are found in a single pass regardless of how many are loaded.
//
// The automaton is read-only after construction, so one DATMatcher may be
// shared by any number of goroutines.
type DATMatcher struct {
	trie         *dat.Trie[*types.Word]
	contextLines int
}

// NewDAT compiles words into an automaton.
func NewDAT(words []*types.Word, contextLines int) (*DATMatcher, error) {
	if err := checkWords(words); err != nil {
		return nil, err
	}
	trie, err := dat.Build(wordlist.Patterns(words))
	if err != nil {
		return nil, fmt.Errorf("failed to build automaton: %w", err)
	}
	return &DATMatcher{trie: trie, contextLines: contextLines}, nil
}

// NewDATFromTrie wraps an already built automaton, typically one loaded
// from a datastore snapshot.
func NewDATFromTrie(trie *dat.Trie[*types.Word], contextLines int) (*DATMatcher, error) {
	if trie == nil || trie.Size() == 0 {
		return nil, fmt.Errorf("automaton: %w", dat.ErrNotInitialized)
	}
	return &DATMatcher{trie: trie, contextLines: contextLines}, nil
}

// Trie exposes the underlying automaton.
func (m *DATMatcher) Trie() *dat.Trie[*types.Word] {
	return m.trie
}

// Match scans content against all loaded words.
func (m *DATMatcher) Match(content []byte) ([]*types.Match, error) {
	return m.MatchWithBlobID(content, types.ComputeBlobID(content))
}

// MatchWithBlobID scans content with a known BlobID. Matches are ordered by
// end offset.
func (m *DATMatcher) MatchWithBlobID(content []byte, blobID types.BlobID) ([]*types.Match, error) {
	var (
		matches []*types.Match
		lines   *types.LineIndex
	)
	dedup := NewDeduplicator()

	err := m.trie.ProcessText(content, func(h dat.Hit[*types.Word]) {
		if lines == nil {
			lines = types.NewLineIndex(content)
		}
		match := buildMatch(blobID, h.Value, content, lines, h.Begin, h.End, m.contextLines)
		if !dedup.IsDuplicate(match) {
			dedup.Add(match)
			matches = append(matches, match)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scanning blob %s: %w", blobID, err)
	}
	return matches, nil
}

// First returns the match ending earliest in content, or nil.
func (m *DATMatcher) First(content []byte) (*types.Match, error) {
	h, ok, err := m.trie.FindFirst(content)
	if err != nil || !ok {
		return nil, err
	}
	return buildMatch(types.ComputeBlobID(content), h.Value, content, types.NewLineIndex(content), h.Begin, h.End, m.contextLines), nil
}

// Contains reports whether any word occurs in content.
func (m *DATMatcher) Contains(content []byte) (bool, error) {
	return m.trie.Matches(content)
}

// Close releases resources (no-op for the automaton).
func (m *DATMatcher) Close() error {
	return nil
}
