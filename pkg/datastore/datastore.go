package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chulbong-kr/wordscan/pkg/store"
)

const (
	dbFile        = "datastore.db"
	automatonFile = "automaton.zst"
)

// Datastore manages a directory-based datastore.
type Datastore struct {
	Path      string      // Directory path (e.g., "wordscan.ds")
	Store     store.Store // SQLite store for metadata
	BlobStore *BlobStore  // Optional blob storage (nil if StoreBlobs not set)
}

// Options configures datastore behavior.
type Options struct {
	StoreBlobs bool // Enable blob storage (--store-blobs flag)
}

// Open opens or creates a datastore directory.
func Open(path string, opts Options) (*Datastore, error) {
	if path == "" {
		return nil, fmt.Errorf("datastore path is required")
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("creating datastore directory: %w", err)
	}
	if opts.StoreBlobs {
		if err := os.MkdirAll(filepath.Join(path, "blobs"), 0755); err != nil {
			return nil, fmt.Errorf("creating blobs directory: %w", err)
		}
	}

	gitignorePath := filepath.Join(path, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("*\n"), 0644); err != nil {
		return nil, fmt.Errorf("writing .gitignore: %w", err)
	}

	s, err := store.New(store.Config{Path: filepath.Join(path, dbFile)})
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	ds := &Datastore{Path: path, Store: s}
	if opts.StoreBlobs {
		ds.BlobStore = &BlobStore{Root: filepath.Join(path, "blobs")}
	}
	return ds, nil
}

// DBPath returns the path of the datastore's SQLite database.
func (d *Datastore) DBPath() string {
	return filepath.Join(d.Path, dbFile)
}

// Close closes the datastore and releases resources.
func (d *Datastore) Close() error {
	if d.Store != nil {
		return d.Store.Close()
	}
	return nil
}
