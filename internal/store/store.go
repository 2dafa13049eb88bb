// Package store is the single persistent repository shared by the
// pipeline: the background clip pool, the shorts ledger and the usage
// analytics. It owns its schema through versioned migrations run once at
// open time; business components never issue DDL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mgaillard/shortforge/internal/ports"
)

// timeFormat keeps timestamps lexicographically comparable in SQL.
const timeFormat = time.RFC3339Nano

type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

var _ ports.Store = (*Store)(nil)

// Open opens (creating if needed) the SQLite database at path and brings
// the schema up to date.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY churn in
	// a single-process batch tool.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: log.With().Str("component", "store").Logger()}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

var migrations = []string{
	// v1: core schema.
	`CREATE TABLE IF NOT EXISTS fonds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		theme TEXT NOT NULL,
		source TEXT NOT NULL,
		url TEXT NOT NULL DEFAULT '',
		duration REAL NOT NULL DEFAULT 0,
		file_size INTEGER NOT NULL DEFAULT 0,
		download_date TEXT NOT NULL,
		usage_count INTEGER NOT NULL DEFAULT 0,
		last_used TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_fonds_theme ON fonds (theme);
	CREATE TABLE IF NOT EXISTS fond_usage (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fond_id INTEGER NOT NULL REFERENCES fonds (id),
		video_id TEXT NOT NULL,
		usage_date TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS shorts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		short_path TEXT NOT NULL,
		thumbnail_path TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		start_time REAL NOT NULL DEFAULT 0,
		end_time REAL NOT NULL DEFAULT 0,
		justification TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_shorts_video_platform ON shorts (video_id, platform);
	CREATE TABLE IF NOT EXISTS shorts_analytics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		short_path TEXT NOT NULL,
		duration REAL NOT NULL DEFAULT 0,
		file_size INTEGER NOT NULL DEFAULT 0,
		views INTEGER NOT NULL DEFAULT 0,
		likes INTEGER NOT NULL DEFAULT 0,
		shares INTEGER NOT NULL DEFAULT 0,
		comments INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'created',
		created_at TEXT NOT NULL,
		last_updated TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_shorts_analytics_platform ON shorts_analytics (platform);`,
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("migrate: read version: %w", err)
	}

	for v := current; v < len(migrations); v++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migrate v%d: %w", v+1, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate v%d: %w", v+1, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, v+1); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate v%d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate v%d: %w", v+1, err)
		}
		s.log.Debug().Int("version", v+1).Msg("schema migrated")
	}
	return nil
}

func formatTime(t time.Time) string { return t.UTC().Format(timeFormat) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
