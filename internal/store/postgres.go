package store

import (
	"database/sql"
	_ "embed"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// Pool sizing for PostgreSQL.
const (
	PostgresMaxOpenConns    = 20
	PostgresMaxIdleConns    = 5
	PostgresConnMaxLifetime = 30 * time.Minute
	PostgresConnMaxIdleTime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresSchema string

// PostgresStore keeps conversations and turn logs in PostgreSQL. CommitTurn
// row-locks the conversation with SELECT ... FOR UPDATE.
type PostgresStore struct {
	*sqlStore
}

// NewPostgresStore connects with WithPostgresDSN and applies the schema.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	cfg := collectOpts(opts)
	db, err := openSQL("PostgresStore", "postgres", cfg.DSN, postgresSchema, func(db *sql.DB) {
		db.SetMaxOpenConns(PostgresMaxOpenConns)
		db.SetMaxIdleConns(PostgresMaxIdleConns)
		db.SetConnMaxLifetime(PostgresConnMaxLifetime)
		db.SetConnMaxIdleTime(PostgresConnMaxIdleTime)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("PostgresStore: connected")
	return &PostgresStore{sqlStore: &sqlStore{
		db:         db,
		name:       "PostgresStore",
		dollarVars: true,
		lockClause: " FOR UPDATE",
	}}, nil
}
