//go:build !wasm

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/jackc/pgx/v5"
)

// EnvPostgresDSN names the environment variable holding a PostgreSQL DSN.
const EnvPostgresDSN = "WORDSCAN_POSTGRES_DSN"

const postgresTimeout = 30 * time.Second

// PostgresStore implements Store on PostgreSQL through a single pgx
// connection. Calls are serialized.
type PostgresStore struct {
	mu   sync.Mutex
	conn *pgx.Conn
}

// NewPostgres connects to dsn and creates the schema if needed.
func NewPostgres(dsn string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), postgresTimeout)
	defer cancel()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	s := &PostgresStore{conn: conn}
	if err := s.createSchema(ctx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) createSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(postgresDialect) {
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", firstLine(stmt), err)
		}
	}
	_, err := s.conn.Exec(ctx, `
		INSERT INTO schema_version (version)
		SELECT $1 WHERE NOT EXISTS (SELECT 1 FROM schema_version)
	`, SchemaVersion)
	return err
}

// exec runs a statement under the store lock.
func (s *PostgresStore) exec(query string, args ...interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), postgresTimeout)
	defer cancel()
	_, err := s.conn.Exec(ctx, query, args...)
	return err
}

// query runs a query under the store lock and hands each row to fn.
func (s *PostgresStore) query(fn func(row rowScanner) error, query string, args ...interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), postgresTimeout)
	defer cancel()

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// AddBlob stores a blob record.
func (s *PostgresStore) AddBlob(id types.BlobID, size int64) error {
	if err := s.exec("INSERT INTO blobs (id, size) VALUES ($1, $2) ON CONFLICT DO NOTHING", id.Hex(), size); err != nil {
		return fmt.Errorf("inserting blob: %w", err)
	}
	return nil
}

// AddWord stores a word definition.
func (s *PostgresStore) AddWord(w *types.Word) error {
	err := s.exec(`
		INSERT INTO words (id, text, category, severity, structural_id, description)
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT DO NOTHING
	`, w.ID, w.Text, w.Category, string(w.Severity), w.StructuralID, w.Description)
	if err != nil {
		return fmt.Errorf("inserting word: %w", err)
	}
	return nil
}

// AddMatch stores a match record.
func (s *PostgresStore) AddMatch(m *types.Match) error {
	err := s.exec(`
		INSERT INTO matches (`+matchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT DO NOTHING
	`, matchArgs(m)...)
	if err != nil {
		return fmt.Errorf("inserting match: %w", err)
	}
	return nil
}

// AddFinding stores a finding (deduplicated).
func (s *PostgresStore) AddFinding(f *types.Finding) error {
	err := s.exec(`
		INSERT INTO findings (id, word_id, category, text)
		VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING
	`, f.ID, f.WordID, f.Category, f.Text)
	if err != nil {
		return fmt.Errorf("inserting finding: %w", err)
	}
	return nil
}

// AddProvenance associates provenance with a blob.
func (s *PostgresStore) AddProvenance(blobID types.BlobID, prov types.Provenance) error {
	kind, path, data, err := encodeProvenance(prov)
	if err != nil {
		return err
	}
	err = s.exec(`
		INSERT INTO provenance (blob_id, type, path, data)
		VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING
	`, blobID.Hex(), kind, path, data)
	if err != nil {
		return fmt.Errorf("inserting provenance: %w", err)
	}
	return nil
}

// GetBlobs retrieves all blob records.
func (s *PostgresStore) GetBlobs() ([]Blob, error) {
	var blobs []Blob
	err := s.query(func(row rowScanner) error {
		b, err := scanBlob(row)
		if err == nil {
			blobs = append(blobs, b)
		}
		return err
	}, "SELECT id, size FROM blobs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying blobs: %w", err)
	}
	return blobs, nil
}

// GetWords retrieves all stored words ordered by ID.
func (s *PostgresStore) GetWords() ([]*types.Word, error) {
	var words []*types.Word
	err := s.query(func(row rowScanner) error {
		w, err := scanWord(row)
		if err == nil {
			words = append(words, w)
		}
		return err
	}, "SELECT "+wordColumns+" FROM words ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying words: %w", err)
	}
	return words, nil
}

// GetMatches retrieves matches for a blob.
func (s *PostgresStore) GetMatches(blobID types.BlobID) ([]*types.Match, error) {
	return s.queryMatches("SELECT "+matchColumns+" FROM matches WHERE blob_id = $1 ORDER BY id", blobID.Hex())
}

// GetAllMatches retrieves all matches (for JSON export).
func (s *PostgresStore) GetAllMatches() ([]*types.Match, error) {
	return s.queryMatches("SELECT " + matchColumns + " FROM matches ORDER BY id")
}

func (s *PostgresStore) queryMatches(query string, args ...interface{}) ([]*types.Match, error) {
	matches := []*types.Match{}
	err := s.query(func(row rowScanner) error {
		m, err := scanMatch(row)
		if err == nil {
			matches = append(matches, m)
		}
		return err
	}, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	return matches, nil
}

// GetFindings retrieves all findings ordered by ID, each with its matches.
func (s *PostgresStore) GetFindings() ([]*types.Finding, error) {
	var findings []*types.Finding
	err := s.query(func(row rowScanner) error {
		var f types.Finding
		if err := row.Scan(&f.ID, &f.WordID, &f.Category, &f.Text); err != nil {
			return fmt.Errorf("scanning finding: %w", err)
		}
		findings = append(findings, &f)
		return nil
	}, "SELECT id, word_id, category, text FROM findings ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying findings: %w", err)
	}

	matches, err := s.GetAllMatches()
	if err != nil {
		return nil, err
	}
	attachMatches(findings, matches)
	return findings, nil
}

// GetProvenance retrieves every provenance record of a blob.
func (s *PostgresStore) GetProvenance(blobID types.BlobID) ([]types.Provenance, error) {
	provs := []types.Provenance{}
	err := s.query(func(row rowScanner) error {
		var kind, data string
		if err := row.Scan(&kind, &data); err != nil {
			return fmt.Errorf("scanning provenance: %w", err)
		}
		p, err := decodeProvenance(kind, data)
		if err == nil {
			provs = append(provs, p)
		}
		return err
	}, "SELECT type, data FROM provenance WHERE blob_id = $1 ORDER BY id", blobID.Hex())
	if err != nil {
		return nil, fmt.Errorf("querying provenance: %w", err)
	}
	return provs, nil
}

// FindingExists checks if a finding with this ID exists.
func (s *PostgresStore) FindingExists(findingID string) (bool, error) {
	return s.exists("SELECT EXISTS (SELECT 1 FROM findings WHERE id = $1)", findingID)
}

// BlobExists checks if a blob has already been scanned.
func (s *PostgresStore) BlobExists(id types.BlobID) (bool, error) {
	return s.exists("SELECT EXISTS (SELECT 1 FROM blobs WHERE id = $1)", id.Hex())
}

func (s *PostgresStore) exists(query string, arg string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), postgresTimeout)
	defer cancel()

	var ok bool
	if err := s.conn.QueryRow(ctx, query, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("checking existence: %w", err)
	}
	return ok, nil
}

// Close closes the connection.
func (s *PostgresStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), postgresTimeout)
	defer cancel()
	return s.conn.Close(ctx)
}
