package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/azyu/publishgpt/pkg/types"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// UsageStore is the SQLite ledger of remote calls.
type UsageStore struct {
	db   *sql.DB
	path string
}

// OpenUsageStore opens or creates the ledger under dir/.publishgpt.
func OpenUsageStore(dir string) (*UsageStore, error) {
	stateDir := filepath.Join(dir, types.StateDir)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	dbPath := filepath.Join(stateDir, types.UsageDBFile)

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &UsageStore{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the required tables if they don't exist.
func (s *UsageStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS usage_events (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		prompt_tokens INTEGER NOT NULL DEFAULT 0,
		completion_tokens INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_usage_events_run
	ON usage_events(run_id);

	-- Schema version for migrations
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record inserts an event. Missing ID and CreatedAt are filled in.
func (s *UsageStore) Record(ctx context.Context, event types.UsageEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_events
			(id, run_id, kind, provider, model, prompt_tokens, completion_tokens, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID, event.RunID, string(event.Kind), event.Provider, event.Model,
		event.PromptTokens, event.CompletionTokens, event.Duration.Milliseconds(), event.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage event: %w", err)
	}
	return nil
}

// Events returns the events of one run in insertion order.
func (s *UsageStore) Events(ctx context.Context, runID string) ([]types.UsageEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, kind, provider, model, prompt_tokens, completion_tokens, duration_ms, created_at
		FROM usage_events
		WHERE run_id = ?
		ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("usage query failed: %w", err)
	}
	defer rows.Close()

	var events []types.UsageEvent
	for rows.Next() {
		var e types.UsageEvent
		var kind string
		var durationMS, createdUnix int64
		if err := rows.Scan(&e.ID, &e.RunID, &kind, &e.Provider, &e.Model,
			&e.PromptTokens, &e.CompletionTokens, &durationMS, &createdUnix); err != nil {
			return nil, err
		}
		e.Kind = types.UsageKind(kind)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.CreatedAt = time.Unix(createdUnix, 0)
		events = append(events, e)
	}

	return events, rows.Err()
}

// Totals aggregates all recorded events per kind and model.
func (s *UsageStore) Totals(ctx context.Context) ([]types.UsageTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, model, COUNT(*), SUM(prompt_tokens), SUM(completion_tokens)
		FROM usage_events
		GROUP BY kind, model
		ORDER BY kind, model
	`)
	if err != nil {
		return nil, fmt.Errorf("usage query failed: %w", err)
	}
	defer rows.Close()

	var totals []types.UsageTotal
	for rows.Next() {
		var t types.UsageTotal
		var kind string
		if err := rows.Scan(&kind, &t.Model, &t.Calls, &t.PromptTokens, &t.CompletionTokens); err != nil {
			return nil, err
		}
		t.Kind = types.UsageKind(kind)
		totals = append(totals, t)
	}

	return totals, rows.Err()
}

// Path returns the database file path.
func (s *UsageStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *UsageStore) Close() error {
	return s.db.Close()
}
