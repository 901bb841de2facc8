package store

import (
	"strings"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// Store provides persistence for scan results.
// This interface abstracts the underlying storage implementation,
// allowing for different backends (memory, SQLite, PostgreSQL).
type Store interface {
	// AddBlob stores a blob record.
	AddBlob(id types.BlobID, size int64) error

	// AddWord stores a word definition.
	AddWord(w *types.Word) error

	// AddMatch stores a match record.
	AddMatch(m *types.Match) error

	// AddFinding stores a finding (deduplicated).
	AddFinding(f *types.Finding) error

	// AddProvenance associates provenance with a blob.
	AddProvenance(blobID types.BlobID, prov types.Provenance) error

	// GetBlobs retrieves all blob records.
	GetBlobs() ([]Blob, error)

	// GetWords retrieves all stored words.
	GetWords() ([]*types.Word, error)

	// GetMatches retrieves matches for a blob.
	GetMatches(blobID types.BlobID) ([]*types.Match, error)

	// GetAllMatches retrieves all matches (for JSON export).
	GetAllMatches() ([]*types.Match, error)

	// GetFindings retrieves all findings with their matches attached.
	GetFindings() ([]*types.Finding, error)

	// GetProvenance retrieves every provenance record of a blob.
	GetProvenance(blobID types.BlobID) ([]types.Provenance, error)

	// FindingExists checks if a finding with this ID exists.
	FindingExists(findingID string) (bool, error)

	// BlobExists checks if a blob has already been scanned.
	BlobExists(id types.BlobID) (bool, error)

	// Close closes the database connection.
	Close() error
}

// Blob is a scanned blob record.
type Blob struct {
	ID   types.BlobID
	Size int64
}

// Config for store initialization.
type Config struct {
	// Path is the database file path, ":memory:" for an in-memory store, or
	// a postgres:// DSN.
	Path string
}

// MemoryPath selects the in-memory store.
const MemoryPath = ":memory:"

// IsPostgresDSN reports whether path names a PostgreSQL database.
func IsPostgresDSN(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://")
}
