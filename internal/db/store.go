package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database holding properties, their messages and cached drafts
type Store struct {
	db *sql.DB
}

// Open opens (and creates/migrates) the database at the given path
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	// Ensure file exists with strict perms
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		f, err := os.OpenFile(dbPath, os.O_CREATE|os.O_RDWR, 0o600)
		if err != nil {
			return nil, fmt.Errorf("create database file: %w", err)
		}
		f.Close()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys=ON;")
	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout=5000;")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	// user_version based migrations
	var ver int
	_ = s.db.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&ver)

	// v1: properties and their messages
	if ver == 0 {
		if err := s.migrateStep(ctx, 1, `
CREATE TABLE IF NOT EXISTS properties (
  id         TEXT PRIMARY KEY,
  name       TEXT NOT NULL,
  position   INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);
`, `
CREATE TABLE IF NOT EXISTS property_messages (
  id          TEXT PRIMARY KEY,
  property_id TEXT NOT NULL,
  position    INTEGER NOT NULL,
  sender      TEXT NOT NULL,
  receiver    TEXT NOT NULL DEFAULT '',
  content     TEXT NOT NULL,
  ts_seconds  INTEGER NOT NULL DEFAULT 0,
  ts_nanos    INTEGER NOT NULL DEFAULT 0,
  ts_iso      TEXT NOT NULL DEFAULT '',
  source      TEXT NOT NULL DEFAULT '',
  FOREIGN KEY (property_id) REFERENCES properties(id) ON DELETE CASCADE
);
`, `CREATE INDEX IF NOT EXISTS idx_property_messages_position ON property_messages(property_id, position);`); err != nil {
			return err
		}
		ver = 1
	}

	// v2: AI reply drafts
	if ver == 1 {
		if err := s.migrateStep(ctx, 2, `
CREATE TABLE IF NOT EXISTS ai_drafts (
  property_id TEXT NOT NULL,
  message_key TEXT NOT NULL,
  draft       TEXT NOT NULL,
  updated_at  INTEGER NOT NULL,
  PRIMARY KEY (property_id, message_key)
);
`); err != nil {
			return err
		}
		ver = 2
	}

	return nil
}

// migrateStep runs stmts and bumps user_version to version in a single transaction
func (s *Store) migrateStep(ctx context.Context, version int, stmts ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			break
		}
	}
	if err == nil {
		_, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version=%d;", version))
	}
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migrate v%d: %w", version, err)
	}
	return tx.Commit()
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for use by domain stores
func (s *Store) DB() *sql.DB {
	return s.db
}
