package matcher

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chulbong-kr/wordscan/pkg/prefilter"
	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/dlclark/regexp2"
)

const parallelThreshold = 10000 // bytes

// RegexpMatcher implements Matcher with one regexp2 alternation per word
// category. It is much slower than DATMatcher and exists as an independent
// cross-check of the automaton.
//
// Each category compiles to a zero-width lookahead over its quoted words, so
// the regexp reports every position where some word of the category starts.
// Candidates are then confirmed byte for byte, which also yields the shorter
// words sharing that start.
//
// Thread Safety: the compiled patterns are read-only after construction and
// every call keeps its own state, so a RegexpMatcher may be shared.
type RegexpMatcher struct {
	categories   []*categoryPattern
	prefilter    *prefilter.Prefilter
	chunks       ChunkConfig
	contextLines int
}

type categoryPattern struct {
	name    string
	re      *regexp2.Regexp
	byFirst map[byte][]*types.Word // candidate words keyed by first byte
}

// regexpHit is a confirmed word occurrence, offsets relative to the whole blob.
type regexpHit struct {
	word       *types.Word
	start, end int
}

// NewRegexp compiles words into per-category patterns.
func NewRegexp(words []*types.Word, contextLines int) (*RegexpMatcher, error) {
	if err := checkWords(words); err != nil {
		return nil, err
	}

	grouped := make(map[string][]*types.Word)
	longest := 0
	for _, w := range words {
		grouped[w.Category] = append(grouped[w.Category], w)
		longest = max(longest, len(w.Text))
	}

	m := &RegexpMatcher{
		prefilter:    prefilter.New(words),
		chunks:       DefaultChunkConfig(),
		contextLines: contextLines,
	}
	m.chunks.Overlap = longest - 1

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cp, err := compileCategory(name, grouped[name])
		if err != nil {
			return nil, err
		}
		m.categories = append(m.categories, cp)
	}
	return m, nil
}

func compileCategory(name string, words []*types.Word) (*categoryPattern, error) {
	// Longest first so the alternation prefers the longest word at a position;
	// shorter ones are recovered during confirmation.
	sorted := make([]*types.Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].Text) != len(sorted[j].Text) {
			return len(sorted[i].Text) > len(sorted[j].Text)
		}
		return sorted[i].Text < sorted[j].Text
	})

	alts := make([]string, len(sorted))
	byFirst := make(map[byte][]*types.Word)
	for i, w := range sorted {
		alts[i] = regexp2.Escape(w.Text)
		byFirst[w.Text[0]] = append(byFirst[w.Text[0]], w)
	}
	pattern := "(?=(?:" + strings.Join(alts, "|") + "))"

	// Try RE2 mode first, fall back to the default syntax.
	re, err := regexp2.Compile(pattern, regexp2.RE2)
	if err != nil {
		re, err = regexp2.Compile(pattern, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern for category %s: %w", name, err)
		}
	}
	re.MatchTimeout = 5 * time.Second

	return &categoryPattern{name: name, re: re, byFirst: byFirst}, nil
}

// Match scans content against all loaded words.
func (m *RegexpMatcher) Match(content []byte) ([]*types.Match, error) {
	return m.MatchWithBlobID(content, types.ComputeBlobID(content))
}

// MatchWithBlobID scans content with a known BlobID. Matches are ordered by
// end offset, then by word text.
func (m *RegexpMatcher) MatchWithBlobID(content []byte, blobID types.BlobID) ([]*types.Match, error) {
	active := m.activeCategories(content)
	if len(active) == 0 {
		return nil, nil
	}

	var hits []regexpHit
	if len(content) >= parallelThreshold && len(active) > 1 {
		hits = m.matchParallel(content, active)
	} else {
		for _, cp := range active {
			hits = append(hits, m.scanCategory(content, cp)...)
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].end != hits[j].end {
			return hits[i].end < hits[j].end
		}
		return hits[i].word.Text < hits[j].word.Text
	})

	lines := types.NewLineIndex(content)
	dedup := NewDeduplicator()
	matches := make([]*types.Match, 0, len(hits))
	for _, h := range hits {
		match := buildMatch(blobID, h.word, content, lines, h.start, h.end, m.contextLines)
		if !dedup.IsDuplicate(match) {
			dedup.Add(match)
			matches = append(matches, match)
		}
	}
	return matches, nil
}

// activeCategories narrows the categories to those the prefilter saw.
func (m *RegexpMatcher) activeCategories(content []byte) []*categoryPattern {
	seen := make(map[string]bool)
	for _, c := range m.prefilter.Filter(content) {
		seen[c] = true
	}
	var active []*categoryPattern
	for _, cp := range m.categories {
		if seen[cp.name] {
			active = append(active, cp)
		}
	}
	return active
}

// scanCategory finds every occurrence of the category's words, chunk by chunk.
// Chunk overlap produces repeats, which the caller's deduplicator drops.
func (m *RegexpMatcher) scanCategory(content []byte, cp *categoryPattern) []regexpHit {
	var hits []regexpHit
	for _, chunk := range ChunkContent(content, m.chunks) {
		offsets := runeOffsets(chunk.Content)
		match, err := cp.re.FindRunesMatch([]rune(string(chunk.Content)))
		for err == nil && match != nil {
			pos := offsets[match.Index]
			for _, w := range cp.byFirst[chunk.Content[pos]] {
				end := pos + len(w.Text)
				if end <= len(chunk.Content) && string(chunk.Content[pos:end]) == w.Text {
					start := chunk.StartOffset + pos
					hits = append(hits, regexpHit{word: w, start: start, end: chunk.StartOffset + end})
				}
			}
			match, err = cp.re.FindNextMatch(match)
		}
		if err != nil {
			warnRegexp(cp.name, err)
			return hits
		}
	}
	return hits
}

// matchParallel spreads categories over a worker pool.
func (m *RegexpMatcher) matchParallel(content []byte, active []*categoryPattern) []regexpHit {
	numWorkers := min(runtime.GOMAXPROCS(0), len(active))

	jobs := make(chan *categoryPattern, len(active))
	results := make(chan []regexpHit, numWorkers)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var workerHits []regexpHit
			for cp := range jobs {
				workerHits = append(workerHits, m.scanCategory(content, cp)...)
			}
			results <- workerHits
		}()
	}

	for _, cp := range active {
		jobs <- cp
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var hits []regexpHit
	for r := range results {
		hits = append(hits, r...)
	}
	return hits
}

// Close releases resources (no-op for regexp).
func (m *RegexpMatcher) Close() error {
	return nil
}

// runeOffsets maps each rune index of content, as regexp2 counts them, to its
// byte offset. Invalid bytes count as one rune each, as in a []rune conversion.
func runeOffsets(content []byte) []int {
	offsets := make([]int, 0, len(content)+1)
	for i := range string(content) {
		offsets = append(offsets, i)
	}
	return append(offsets, len(content))
}

func warnRegexp(category string, err error) {
	if strings.Contains(err.Error(), "match timeout") {
		fmt.Fprintf(os.Stderr, "[warn] category %s regex timeout on content (skipping category for this blob)\n", category)
		return
	}
	fmt.Fprintf(os.Stderr, "[warn] category %s regex error (skipping category for this blob): %v\n", category, err)
}
