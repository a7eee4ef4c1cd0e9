package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteDirPerm is used when creating the database's parent directory.
const sqliteDirPerm = 0o755

//go:embed migrations_sqlite.sql
var sqliteSchema string

// SQLiteStore keeps conversations and turn logs in one SQLite file.
type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore opens the file given by WithSQLiteDSN, creating its
// directory when needed, and applies the schema.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	cfg := collectOpts(opts)
	if path := cfg.DSN; path != "" && path != ":memory:" && !strings.HasPrefix(path, "file:") {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, sqliteDirPerm); err != nil {
			return nil, fmt.Errorf("SQLiteStore: create %s: %w", dir, err)
		}
	}
	// One connection serialises writers and keeps ":memory:" databases
	// from splitting across connections.
	db, err := openSQL("SQLiteStore", "sqlite3", cfg.DSN, sqliteSchema, func(db *sql.DB) {
		db.SetMaxOpenConns(1)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("SQLiteStore: opened", "path", cfg.DSN)
	return &SQLiteStore{sqlStore: &sqlStore{db: db, name: "SQLiteStore"}}, nil
}
