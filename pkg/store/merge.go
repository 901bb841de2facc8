//go:build !wasm

package store

import (
	"fmt"
	"os"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// MergeConfig configures the merge operation.
type MergeConfig struct {
	// SourcePaths are the SQLite database files to merge from.
	SourcePaths []string
	// DestPath is the destination database file or a postgres:// DSN.
	DestPath string
}

// MergeStats tracks merge operation statistics.
type MergeStats struct {
	BlobsMerged      int
	WordsMerged      int
	MatchesMerged    int
	FindingsMerged   int
	ProvenanceMerged int
	SourcesProcessed int
}

// Merge combines multiple wordscan databases into one.
// Rows already present in the destination are skipped.
func Merge(cfg MergeConfig) (*MergeStats, error) {
	if len(cfg.SourcePaths) == 0 {
		return nil, fmt.Errorf("no source databases specified")
	}
	if cfg.DestPath == "" {
		return nil, fmt.Errorf("destination path is required")
	}
	for _, src := range cfg.SourcePaths {
		if src == cfg.DestPath {
			return nil, fmt.Errorf("source %s is also the destination", src)
		}
	}

	dest, err := New(Config{Path: cfg.DestPath})
	if err != nil {
		return nil, fmt.Errorf("opening destination database: %w", err)
	}
	defer dest.Close()

	m, err := newMerger(dest)
	if err != nil {
		return nil, err
	}

	for _, sourcePath := range cfg.SourcePaths {
		if err := m.mergeFrom(sourcePath); err != nil {
			return &m.stats, fmt.Errorf("merging from %s: %w", sourcePath, err)
		}
		m.stats.SourcesProcessed++
	}

	return &m.stats, nil
}

type merger struct {
	dest     Store
	matchIDs map[string]bool
	stats    MergeStats
}

func newMerger(dest Store) (*merger, error) {
	existing, err := dest.GetAllMatches()
	if err != nil {
		return nil, fmt.Errorf("reading destination matches: %w", err)
	}
	ids := make(map[string]bool, len(existing))
	for _, m := range existing {
		ids[m.StructuralID] = true
	}
	return &merger{dest: dest, matchIDs: ids}, nil
}

// mergeFrom copies one source database into the destination. Blobs go first
// so that matches and provenance always reference a stored blob.
func (m *merger) mergeFrom(sourcePath string) error {
	if _, err := os.Stat(sourcePath); err != nil {
		return fmt.Errorf("opening source database: %w", err)
	}
	src, err := NewSQLite(sourcePath)
	if err != nil {
		return fmt.Errorf("opening source database: %w", err)
	}
	defer src.Close()

	blobs, err := src.GetBlobs()
	if err != nil {
		return err
	}
	if err := m.mergeBlobs(src, blobs); err != nil {
		return fmt.Errorf("merging blobs: %w", err)
	}
	if err := m.mergeWords(src); err != nil {
		return fmt.Errorf("merging words: %w", err)
	}
	if err := m.mergeFindings(src); err != nil {
		return fmt.Errorf("merging findings: %w", err)
	}
	if err := m.mergeMatches(src); err != nil {
		return fmt.Errorf("merging matches: %w", err)
	}
	return nil
}

func (m *merger) mergeBlobs(src Store, blobs []Blob) error {
	for _, b := range blobs {
		exists, err := m.dest.BlobExists(b.ID)
		if err != nil {
			return err
		}
		if !exists {
			if err := m.dest.AddBlob(b.ID, b.Size); err != nil {
				return err
			}
			m.stats.BlobsMerged++
		}
		if err := m.mergeProvenance(src, b.ID); err != nil {
			return err
		}
	}
	return nil
}

func (m *merger) mergeProvenance(src Store, id types.BlobID) error {
	provs, err := src.GetProvenance(id)
	if err != nil || len(provs) == 0 {
		return err
	}
	before, err := m.dest.GetProvenance(id)
	if err != nil {
		return err
	}
	for _, p := range provs {
		if err := m.dest.AddProvenance(id, p); err != nil {
			return err
		}
	}
	after, err := m.dest.GetProvenance(id)
	if err != nil {
		return err
	}
	m.stats.ProvenanceMerged += len(after) - len(before)
	return nil
}

func (m *merger) mergeWords(src Store) error {
	existing, err := m.dest.GetWords()
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, w := range existing {
		have[w.ID] = true
	}

	words, err := src.GetWords()
	if err != nil {
		return err
	}
	for _, w := range words {
		if have[w.ID] {
			continue
		}
		if err := m.dest.AddWord(w); err != nil {
			return err
		}
		have[w.ID] = true
		m.stats.WordsMerged++
	}
	return nil
}

func (m *merger) mergeFindings(src Store) error {
	findings, err := src.GetFindings()
	if err != nil {
		return err
	}
	for _, f := range findings {
		exists, err := m.dest.FindingExists(f.ID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := m.dest.AddFinding(f); err != nil {
			return err
		}
		m.stats.FindingsMerged++
	}
	return nil
}

func (m *merger) mergeMatches(src Store) error {
	matches, err := src.GetAllMatches()
	if err != nil {
		return err
	}
	for _, match := range matches {
		if m.matchIDs[match.StructuralID] {
			continue
		}
		if err := m.dest.AddMatch(match); err != nil {
			return err
		}
		m.matchIDs[match.StructuralID] = true
		m.stats.MatchesMerged++
	}
	return nil
}
