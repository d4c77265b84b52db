package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the SQLite connection and hands out the repositories built on it.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := &Store{db: db, drv: entsql.OpenDB(dialect.SQLite, db)}
	if err := s.migrate(context.Background()); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// CallEvents returns the log of assessment service calls.
func (s *Store) CallEvents() *CallEventLog {
	return &CallEventLog{drv: s.drv}
}

func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// schema holds the DDL applied on Open. Timestamps are unix milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + kvTable + ` (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + callEventsTable + ` (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at    INTEGER NOT NULL,
		transport     TEXT NOT NULL DEFAULT '',
		endpoint      TEXT NOT NULL,
		status_code   INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_call_events_endpoint ON ` + callEventsTable + ` (endpoint, created_at)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}

// applyPragmas configures SQLite for single-user use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. LEARNFORGE_DB environment variable
// 2. $XDG_DATA_HOME/learnforge/learnforge.db
// 3. ~/.local/share/learnforge/learnforge.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("LEARNFORGE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "learnforge", "learnforge.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
