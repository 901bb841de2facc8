package matcher

import "github.com/chulbong-kr/wordscan/pkg/types"

// DedupeMode controls how matches are deduplicated.
type DedupeMode int

const (
	// DedupeByLocation treats each (word, blob, offset) as distinct.
	DedupeByLocation DedupeMode = iota

	// DedupeByFinding keeps one match per (word, matched text), so a word
	// repeated throughout a blob is reported once.
	DedupeByFinding
)

// Deduplicator removes duplicate matches.
type Deduplicator struct {
	seen map[string]struct{}
	mode DedupeMode
}

// NewDeduplicator creates a location-based deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{}), mode: DedupeByLocation}
}

// NewFindingDeduplicator creates a deduplicator keyed by finding.
func NewFindingDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{}), mode: DedupeByFinding}
}

// SetMode changes the deduplication mode.
func (d *Deduplicator) SetMode(mode DedupeMode) {
	d.mode = mode
}

// IsDuplicate returns true if match was already seen.
func (d *Deduplicator) IsDuplicate(m *types.Match) bool {
	_, ok := d.seen[d.key(m)]
	return ok
}

// Add marks a match as seen.
func (d *Deduplicator) Add(m *types.Match) {
	d.seen[d.key(m)] = struct{}{}
}

// Reset clears the deduplicator for reuse.
func (d *Deduplicator) Reset() {
	clear(d.seen)
}

// Filter returns the matches not seen before, in order, marking them seen.
func (d *Deduplicator) Filter(matches []*types.Match) []*types.Match {
	out := matches[:0:0]
	for _, m := range matches {
		if d.IsDuplicate(m) {
			continue
		}
		d.Add(m)
		out = append(out, m)
	}
	return out
}

func (d *Deduplicator) key(m *types.Match) string {
	if d.mode == DedupeByFinding {
		return m.FindingID
	}
	return m.StructuralID
}
