// Package store implements the embedded relational store: raw messages, the
// conversation analysis cache, and per-message analysis rows, backed by
// libsql/sqlite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/zapfield/conversation-intelligence/pkg/logger"
)

// Store wraps the embedded database. All writes are keyed upserts; the only
// multi-row mutations (conversation delete, contact migration) run in a
// transaction.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string, log *logger.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, logger: log}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT NOT NULL,
			account_id TEXT NOT NULL,
			contact_number TEXT NOT NULL,
			contact_name TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			direction TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'text',
			media_url TEXT NOT NULL DEFAULT '',
			audio_transcription TEXT NOT NULL DEFAULT '',
			timestamp INTEGER NOT NULL,
			PRIMARY KEY (account_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation
			ON messages (account_id, contact_number, timestamp)`,
		`CREATE TABLE IF NOT EXISTS conversation_analyses (
			account_id TEXT NOT NULL,
			contact_number TEXT NOT NULL,
			kind TEXT NOT NULL,
			record_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			source_message_count INTEGER NOT NULL,
			source_watermark INTEGER NOT NULL,
			computed_at INTEGER NOT NULL,
			provider TEXT NOT NULL,
			PRIMARY KEY (account_id, contact_number, kind)
		)`,
		`CREATE TABLE IF NOT EXISTS message_analyses (
			message_id TEXT NOT NULL,
			account_id TEXT NOT NULL,
			contact_number TEXT NOT NULL,
			direction TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			category TEXT NOT NULL,
			category_confidence REAL NOT NULL,
			intent TEXT NOT NULL,
			intent_confidence REAL NOT NULL,
			sentiment TEXT NOT NULL,
			urgency_score INTEGER NOT NULL,
			urgency_level TEXT NOT NULL,
			is_urgent INTEGER NOT NULL,
			total_value REAL NOT NULL,
			responded INTEGER NOT NULL,
			response_seconds INTEGER NOT NULL DEFAULT 0,
			analyzed_at INTEGER NOT NULL,
			PRIMARY KEY (account_id, message_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_message_analyses_window
			ON message_analyses (timestamp)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Ping checks database liveness for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
