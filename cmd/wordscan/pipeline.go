package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chulbong-kr/wordscan/pkg/datastore"
	"github.com/chulbong-kr/wordscan/pkg/enum"
	"github.com/chulbong-kr/wordscan/pkg/matcher"
	"github.com/chulbong-kr/wordscan/pkg/store"
	"github.com/chulbong-kr/wordscan/pkg/types"
)

// defaultDatastore is the datastore directory used when none is given.
const defaultDatastore = "wordscan.ds"

// output is where a scan writes its results: a datastore directory, or a
// bare in-memory store for ":memory:".
type output struct {
	ds    *datastore.Datastore // nil for in-memory output
	store store.Store
}

// openOutput opens the scan destination at path.
func openOutput(path string, storeBlobs bool) (*output, error) {
	if path == store.MemoryPath {
		s, err := store.New(store.Config{Path: path})
		if err != nil {
			return nil, err
		}
		return &output{store: s}, nil
	}
	ds, err := datastore.Open(path, datastore.Options{StoreBlobs: storeBlobs})
	if err != nil {
		return nil, err
	}
	return &output{ds: ds, store: ds.Store}, nil
}

func (o *output) Close() error {
	if o.ds != nil {
		return o.ds.Close()
	}
	return o.store.Close()
}

// resolveStorePath maps a datastore directory to its database file. Files
// and PostgreSQL DSNs are returned unchanged.
func resolveStorePath(path string) (string, error) {
	if store.IsPostgresDSN(path) {
		return path, nil
	}
	if path == store.MemoryPath {
		return "", fmt.Errorf("cannot read results from an in-memory store")
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("datastore not found: %s", path)
	}
	if info.IsDir() {
		return filepath.Join(path, "datastore.db"), nil
	}
	return path, nil
}

// newMatcher builds the matcher for engine. The dat engine reuses the
// automaton compiled into the datastore when it matches words.
func newMatcher(o *output, words []*types.Word, engine string, contextLines int) (matcher.Matcher, error) {
	if (engine == "" || engine == matcher.EngineDAT) && o != nil && o.ds != nil {
		trie, err := o.ds.Automaton(words)
		if err != nil {
			return nil, fmt.Errorf("loading automaton: %w", err)
		}
		return matcher.NewDATFromTrie(trie, contextLines)
	}
	return matcher.New(matcher.Config{
		Words:        words,
		ContextLines: contextLines,
		Engine:       engine,
	})
}

// scanStats counts what a pipeline has processed.
type scanStats struct {
	Blobs    int
	Skipped  int
	Matches  int
	Findings int
}

// pipeline matches enumerated blobs and records blobs, provenance, matches
// and findings in the output store.
type pipeline struct {
	out         *output
	matcher     matcher.Matcher
	incremental bool
	stats       scanStats
}

func newPipeline(out *output, m matcher.Matcher, words []*types.Word, incremental bool) (*pipeline, error) {
	for _, w := range words {
		if err := out.store.AddWord(w); err != nil {
			return nil, fmt.Errorf("storing word: %w", err)
		}
	}
	return &pipeline{out: out, matcher: m, incremental: incremental}, nil
}

// run enumerates e to the end.
func (p *pipeline) run(ctx context.Context, e enum.Enumerator) error {
	return e.Enumerate(ctx, p.handle)
}

func (p *pipeline) handle(content []byte, blobID types.BlobID, prov types.Provenance) error {
	s := p.out.store

	if p.incremental {
		exists, err := s.BlobExists(blobID)
		if err != nil {
			return fmt.Errorf("checking blob: %w", err)
		}
		if exists {
			p.stats.Skipped++
			return s.AddProvenance(blobID, prov)
		}
	}

	if err := s.AddBlob(blobID, int64(len(content))); err != nil {
		return fmt.Errorf("storing blob: %w", err)
	}
	if err := s.AddProvenance(blobID, prov); err != nil {
		return fmt.Errorf("storing provenance: %w", err)
	}
	p.stats.Blobs++

	matches, err := p.matcher.MatchWithBlobID(content, blobID)
	if err != nil {
		return fmt.Errorf("matching content: %w", err)
	}
	if len(matches) > 0 && p.out.ds != nil && p.out.ds.BlobStore != nil {
		if _, err := p.out.ds.BlobStore.Store(content); err != nil {
			return fmt.Errorf("storing blob content: %w", err)
		}
	}

	for _, m := range matches {
		p.stats.Matches++
		if err := s.AddMatch(m); err != nil {
			return fmt.Errorf("storing match: %w", err)
		}

		exists, err := s.FindingExists(m.FindingID)
		if err != nil {
			return fmt.Errorf("checking finding: %w", err)
		}
		if exists {
			continue
		}
		p.stats.Findings++
		finding := &types.Finding{
			ID:       m.FindingID,
			WordID:   m.WordID,
			Category: m.Category,
			Text:     string(m.Matched),
		}
		if err := s.AddFinding(finding); err != nil {
			return fmt.Errorf("storing finding: %w", err)
		}
	}
	return nil
}
