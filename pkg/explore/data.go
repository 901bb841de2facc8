package explore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chulbong-kr/wordscan/pkg/datastore"
	"github.com/chulbong-kr/wordscan/pkg/store"
	"github.com/chulbong-kr/wordscan/pkg/types"
)

// exploreData holds all loaded data for the TUI.
type exploreData struct {
	store    store.Store
	blobs    *datastore.BlobStore // nil unless the scan kept blob content
	words    map[string]*types.Word
	findings []*findingRow
}

// loadData opens a datastore and loads every finding with its matches and
// provenance. storePath can be a datastore directory, a database file or a
// PostgreSQL DSN.
func loadData(storePath string) (*exploreData, error) {
	s, blobs, err := openStore(storePath)
	if err != nil {
		return nil, err
	}

	words, err := s.GetWords()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("retrieving words: %w", err)
	}
	wordMap := make(map[string]*types.Word, len(words))
	for _, w := range words {
		wordMap[w.ID] = w
	}

	findings, err := s.GetFindings()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("retrieving findings: %w", err)
	}

	rows := make([]*findingRow, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, buildFindingRow(f, wordMap, s))
	}

	return &exploreData{
		store:    s,
		blobs:    blobs,
		words:    wordMap,
		findings: rows,
	}, nil
}

func openStore(storePath string) (store.Store, *datastore.BlobStore, error) {
	if store.IsPostgresDSN(storePath) {
		s, err := store.New(store.Config{Path: storePath})
		if err != nil {
			return nil, nil, fmt.Errorf("opening datastore: %w", err)
		}
		return s, nil, nil
	}

	info, err := os.Stat(storePath)
	if err != nil {
		return nil, nil, fmt.Errorf("datastore not found: %s", storePath)
	}
	if !info.IsDir() {
		s, err := store.New(store.Config{Path: storePath})
		if err != nil {
			return nil, nil, fmt.Errorf("opening datastore: %w", err)
		}
		return s, nil, nil
	}

	_, statErr := os.Stat(filepath.Join(storePath, "blobs"))
	ds, err := datastore.Open(storePath, datastore.Options{StoreBlobs: statErr == nil})
	if err != nil {
		return nil, nil, fmt.Errorf("opening datastore: %w", err)
	}
	return ds.Store, ds.BlobStore, nil
}

// buildFindingRow creates a findingRow from a Finding and its matches.
func buildFindingRow(f *types.Finding, words map[string]*types.Word, s store.Store) *findingRow {
	row := &findingRow{
		FindingID:  f.ID,
		WordID:     f.WordID,
		Word:       f.WordID, // fallback
		Text:       f.Text,
		Category:   f.Category,
		MatchCount: len(f.Matches),
	}

	if w, ok := words[f.WordID]; ok {
		row.Word = w.Text
		row.Severity = w.Severity
		if row.Category == "" {
			row.Category = w.Category
		}
	}

	kinds := make(map[string]bool)
	row.Matches = make([]*matchRow, 0, len(f.Matches))
	for _, m := range f.Matches {
		if row.Severity == "" {
			row.Severity = m.Severity
		}
		mr := buildMatchRow(m, s)
		for _, p := range mr.Provenance {
			if !kinds[p.Kind()] {
				kinds[p.Kind()] = true
				row.Sources = append(row.Sources, p.Kind())
			}
		}
		row.Matches = append(row.Matches, mr)
	}

	return row
}

// buildMatchRow creates a matchRow from a Match.
func buildMatchRow(m *types.Match, s store.Store) *matchRow {
	mr := &matchRow{
		StructuralID: m.StructuralID,
		BlobID:       m.BlobID,
		Location:     m.Location,
		Matched:      m.Matched,
		Snippet:      m.Snippet,
	}

	if s != nil {
		provs, err := s.GetProvenance(m.BlobID)
		if err == nil {
			mr.Provenance = provs
		}
	}

	return mr
}

// blobContent returns the stored content of a blob, if the datastore kept it.
func (d *exploreData) blobContent(id types.BlobID) ([]byte, bool) {
	if d.blobs == nil || !d.blobs.Exists(id) {
		return nil, false
	}
	content, err := d.blobs.Get(id)
	if err != nil {
		return nil, false
	}
	return content, true
}

// close closes the underlying store.
func (d *exploreData) close() error {
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}
