package store

import (
	"sort"
	"sync"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// MemoryStore implements Store using in-memory data structures.
// It backs WASM builds, the serve protocol and ":memory:" paths.
type MemoryStore struct {
	mu         sync.RWMutex
	blobs      map[types.BlobID]int64
	blobOrder  []types.BlobID
	words      map[string]*types.Word      // keyed by word ID
	matches    []*types.Match              // all matches, insertion order
	matchIDs   map[string]bool             // structural IDs already stored
	findings   map[string]*types.Finding   // keyed by finding ID
	provenance map[types.BlobID][]provEntry // keyed by blob
}

type provEntry struct {
	key  string // kind + serialized form, for deduplication
	prov types.Provenance
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		blobs:      make(map[types.BlobID]int64),
		words:      make(map[string]*types.Word),
		matchIDs:   make(map[string]bool),
		findings:   make(map[string]*types.Finding),
		provenance: make(map[types.BlobID][]provEntry),
	}
}

// AddBlob stores a blob record.
func (m *MemoryStore) AddBlob(id types.BlobID, size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.blobs[id]; exists {
		return nil
	}
	m.blobs[id] = size
	m.blobOrder = append(m.blobOrder, id)
	return nil
}

// AddWord stores a word definition.
func (m *MemoryStore) AddWord(w *types.Word) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.words[w.ID]; !exists {
		m.words[w.ID] = w
	}
	return nil
}

// AddMatch stores a match record. Matches with a known structural ID are ignored.
func (m *MemoryStore) AddMatch(match *types.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if match.StructuralID != "" {
		if m.matchIDs[match.StructuralID] {
			return nil
		}
		m.matchIDs[match.StructuralID] = true
	}
	m.matches = append(m.matches, match)
	return nil
}

// AddFinding stores a finding (deduplicated).
func (m *MemoryStore) AddFinding(f *types.Finding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.findings[f.ID]; exists {
		return nil
	}
	stored := *f
	stored.Matches = nil
	m.findings[f.ID] = &stored
	return nil
}

// AddProvenance associates provenance with a blob.
func (m *MemoryStore) AddProvenance(blobID types.BlobID, prov types.Provenance) error {
	kind, _, data, err := encodeProvenance(prov)
	if err != nil {
		return err
	}
	key := kind + "\x00" + data

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.provenance[blobID] {
		if e.key == key {
			return nil
		}
	}
	m.provenance[blobID] = append(m.provenance[blobID], provEntry{key: key, prov: prov})
	return nil
}

// GetBlobs retrieves all blob records in insertion order.
func (m *MemoryStore) GetBlobs() ([]Blob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Blob, 0, len(m.blobOrder))
	for _, id := range m.blobOrder {
		result = append(result, Blob{ID: id, Size: m.blobs[id]})
	}
	return result, nil
}

// GetWords retrieves all stored words ordered by ID.
func (m *MemoryStore) GetWords() ([]*types.Word, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.Word, 0, len(m.words))
	for _, w := range m.words {
		result = append(result, w)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetMatches retrieves matches for a blob.
func (m *MemoryStore) GetMatches(blobID types.BlobID) ([]*types.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []*types.Match{}
	for _, match := range m.matches {
		if match.BlobID == blobID {
			result = append(result, match)
		}
	}
	return result, nil
}

// GetAllMatches retrieves all matches (for JSON export).
func (m *MemoryStore) GetAllMatches() ([]*types.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.Match, len(m.matches))
	copy(result, m.matches)
	return result, nil
}

// GetFindings retrieves all findings ordered by ID, each with its matches.
func (m *MemoryStore) GetFindings() ([]*types.Finding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byID := make(map[string]*types.Finding, len(m.findings))
	result := make([]*types.Finding, 0, len(m.findings))
	for id, f := range m.findings {
		c := *f
		c.Matches = nil
		byID[id] = &c
		result = append(result, &c)
	}
	for _, match := range m.matches {
		if f, ok := byID[match.FindingID]; ok {
			f.Matches = append(f.Matches, match)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetProvenance retrieves every provenance record of a blob.
func (m *MemoryStore) GetProvenance(blobID types.BlobID) ([]types.Provenance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.provenance[blobID]
	result := make([]types.Provenance, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.prov)
	}
	return result, nil
}

// FindingExists checks if a finding with this ID exists.
func (m *MemoryStore) FindingExists(findingID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.findings[findingID]
	return exists, nil
}

// BlobExists checks if a blob has already been scanned.
func (m *MemoryStore) BlobExists(id types.BlobID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.blobs[id]
	return exists, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
