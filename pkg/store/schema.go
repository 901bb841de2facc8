package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// tableDefs lists the tables in creation order. The {{blob}} and {{serial}}
// placeholders are filled in per dialect.
var tableDefs = []struct {
	name string
	ddl  string
}{
	{"blobs", `
		CREATE TABLE IF NOT EXISTS blobs (
			id TEXT PRIMARY KEY NOT NULL,
			size BIGINT NOT NULL
		)`},
	{"words", `
		CREATE TABLE IF NOT EXISTS words (
			id TEXT PRIMARY KEY NOT NULL,
			text TEXT NOT NULL,
			category TEXT NOT NULL,
			severity TEXT NOT NULL DEFAULT '',
			structural_id TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		)`},
	{"matches", `
		CREATE TABLE IF NOT EXISTS matches (
			id {{serial}},
			blob_id TEXT NOT NULL REFERENCES blobs(id),
			word_id TEXT NOT NULL,
			word TEXT NOT NULL,
			category TEXT NOT NULL,
			severity TEXT NOT NULL DEFAULT '',
			structural_id TEXT NOT NULL UNIQUE,
			finding_id TEXT NOT NULL,
			offset_start BIGINT NOT NULL,
			offset_end BIGINT NOT NULL,
			start_line INTEGER,
			start_column INTEGER,
			end_line INTEGER,
			end_column INTEGER,
			matched {{blob}},
			snippet_before {{blob}},
			snippet_after {{blob}}
		)`},
	{"findings", `
		CREATE TABLE IF NOT EXISTS findings (
			id TEXT PRIMARY KEY NOT NULL,
			word_id TEXT NOT NULL,
			category TEXT NOT NULL,
			text TEXT NOT NULL
		)`},
	{"provenance", `
		CREATE TABLE IF NOT EXISTS provenance (
			id {{serial}},
			blob_id TEXT NOT NULL REFERENCES blobs(id),
			type TEXT NOT NULL,
			path TEXT NOT NULL DEFAULT '',
			data TEXT NOT NULL,
			UNIQUE(blob_id, type, data)
		)`},
}

var indexDefs = []string{
	`CREATE INDEX IF NOT EXISTS idx_matches_blob_id ON matches(blob_id)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_finding_id ON matches(finding_id)`,
	`CREATE INDEX IF NOT EXISTS idx_provenance_blob_id ON provenance(blob_id)`,
}

type dialect struct {
	blob   string
	serial string
}

var (
	sqliteDialect   = dialect{blob: "BLOB", serial: "INTEGER PRIMARY KEY AUTOINCREMENT"}
	postgresDialect = dialect{blob: "BYTEA", serial: "BIGSERIAL PRIMARY KEY"}
)

// schemaStatements returns the DDL for d, version table first.
func schemaStatements(d dialect) []string {
	stmts := []string{`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`}
	for _, t := range tableDefs {
		ddl := strings.ReplaceAll(t.ddl, "{{blob}}", d.blob)
		stmts = append(stmts, strings.ReplaceAll(ddl, "{{serial}}", d.serial))
	}
	return append(stmts, indexDefs...)
}

// CreateSchema creates the SQLite schema if it doesn't exist.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements(sqliteDialect) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", firstLine(stmt), err)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion); err != nil {
			return fmt.Errorf("recording schema version: %w", err)
		}
	}
	return nil
}

// ReadSchemaVersion returns the stored schema version.
func ReadSchemaVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '('); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
