//go:build !wasm

package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// postgresStore connects to the database named by WORDSCAN_POSTGRES_DSN and
// clears it, or skips the test when the variable is unset.
func postgresStore(t *testing.T) Store {
	t.Helper()
	dsn := os.Getenv(EnvPostgresDSN)
	if dsn == "" {
		t.Skipf("%s not set", EnvPostgresDSN)
	}
	s, err := NewPostgres(dsn)
	require.NoError(t, err)
	_, err = s.conn.Exec(context.Background(), "TRUNCATE matches, provenance, findings, words, blobs")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresStore(t *testing.T) {
	runStoreTests(t, postgresStore)
}
