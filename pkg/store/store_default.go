//go:build !wasm

package store

// New creates a store for native builds:
// ":memory:" or "" returns a MemoryStore, a postgres:// DSN a PostgresStore,
// and anything else a SQLite database at that path.
func New(cfg Config) (Store, error) {
	switch {
	case cfg.Path == "" || cfg.Path == MemoryPath:
		return NewMemory(), nil
	case IsPostgresDSN(cfg.Path):
		return NewPostgres(cfg.Path)
	default:
		return NewSQLite(cfg.Path)
	}
}
