//go:build !wasm && cgo && hyperscan

package matcher

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/flier/gohs/hyperscan"
)

// HyperscanMatcher implements Matcher using Hyperscan, one literal pattern
// per word. Start-of-match tracking is enabled, so offsets come straight
// from the engine.
type HyperscanMatcher struct {
	mu           sync.Mutex              // guards scratch
	db           hyperscan.BlockDatabase // Compiled patterns
	scratch      *hyperscan.Scratch      // Per-scan scratch space
	words        []*types.Word           // Word metadata indexed by pattern ID
	contextLines int                     // Lines of context to extract before/after matches
}

// NewHyperscan creates a Hyperscan-based matcher.
func NewHyperscan(words []*types.Word, contextLines int) (Matcher, error) {
	if err := checkWords(words); err != nil {
		return nil, err
	}

	patterns := make([]*hyperscan.Pattern, len(words))
	for i, w := range words {
		p := hyperscan.NewPattern(literalPattern(w.Text), hyperscan.SomLeftMost)
		p.Id = i // Pattern ID = index into words
		patterns[i] = p
	}

	db, err := hyperscan.NewBlockDatabase(patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to compile Hyperscan database: %w", err)
	}

	scratch, err := hyperscan.NewScratch(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to allocate Hyperscan scratch: %w", err)
	}

	return &HyperscanMatcher{
		db:           db,
		scratch:      scratch,
		words:        words,
		contextLines: contextLines,
	}, nil
}

// Match scans content against all loaded words.
func (m *HyperscanMatcher) Match(content []byte) ([]*types.Match, error) {
	return m.MatchWithBlobID(content, types.ComputeBlobID(content))
}

type rawMatch struct {
	wordIdx    int
	start, end int
}

// MatchWithBlobID scans content with a known BlobID. Matches are ordered by
// end offset, then by word text.
func (m *HyperscanMatcher) MatchWithBlobID(content []byte, blobID types.BlobID) ([]*types.Match, error) {
	var raws []rawMatch
	onMatch := func(id uint, from, to uint64, flags uint, context interface{}) error {
		if int(id) >= len(m.words) {
			return fmt.Errorf("invalid pattern ID from Hyperscan: %d", id)
		}
		raws = append(raws, rawMatch{wordIdx: int(id), start: int(from), end: int(to)})
		return nil
	}

	m.mu.Lock()
	if m.db == nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("hyperscan matcher is closed")
	}
	err := m.db.Scan(content, m.scratch, onMatch, nil)
	m.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("Hyperscan scan failed: %w", err)
	}

	sort.Slice(raws, func(i, j int) bool {
		if raws[i].end != raws[j].end {
			return raws[i].end < raws[j].end
		}
		return m.words[raws[i].wordIdx].Text < m.words[raws[j].wordIdx].Text
	})

	lines := types.NewLineIndex(content)
	dedup := NewDeduplicator()
	matches := make([]*types.Match, 0, len(raws))
	for _, raw := range raws {
		match := buildMatch(blobID, m.words[raw.wordIdx], content, lines, raw.start, raw.end, m.contextLines)
		if !dedup.IsDuplicate(match) {
			dedup.Add(match)
			matches = append(matches, match)
		}
	}
	return matches, nil
}

// Close releases resources.
func (m *HyperscanMatcher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scratch != nil {
		if err := m.scratch.Free(); err != nil {
			return fmt.Errorf("failed to free scratch: %w", err)
		}
		m.scratch = nil
	}
	if m.db != nil {
		if err := m.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		m.db = nil
	}
	return nil
}

// literalPattern escapes every byte outside [A-Za-z0-9] as \xHH so the
// pattern matches text byte for byte, UTF-8 sequences included.
func literalPattern(text string) string {
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, `\x%02x`, c)
	}
	return b.String()
}
