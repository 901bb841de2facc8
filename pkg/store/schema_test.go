//go:build !wasm

package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaStatements_Dialects(t *testing.T) {
	sqlite := strings.Join(schemaStatements(sqliteDialect), "\n")
	postgres := strings.Join(schemaStatements(postgresDialect), "\n")

	assert.NotContains(t, sqlite, "{{")
	assert.NotContains(t, postgres, "{{")
	assert.Contains(t, sqlite, "AUTOINCREMENT")
	assert.Contains(t, postgres, "BIGSERIAL")
	assert.Contains(t, postgres, "BYTEA")
	assert.NotContains(t, postgres, "AUTOINCREMENT")
}

func TestCreateSchema_Idempotent(t *testing.T) {
	db, err := openSQLite(MemoryPath)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, CreateSchema(db))
	require.NoError(t, CreateSchema(db))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count))
	assert.Equal(t, 1, count)

	for _, table := range []string{"blobs", "words", "matches", "findings", "provenance"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS blobs", firstLine("\n  CREATE TABLE IF NOT EXISTS blobs (\n id TEXT)"))
	assert.Equal(t, "CREATE INDEX x ON y", firstLine("CREATE INDEX x ON y"))
}
