// Package storage persists the last-known-good BusinessState snapshot to
// a local SQLite database. It is the fallback read path when the remote
// store is unreachable at startup.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Juanpi2024/yeca-app-agendas/internal/core"

	_ "modernc.org/sqlite"
)

type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(dbPath string) (*SnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SnapshotStore{db: db}, nil
}

func (s *SnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save overwrites the snapshot stored under key with the serialized state.
func (s *SnapshotStore) Save(ctx context.Context, key string, state core.BusinessState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, payload, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT (key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		key, string(payload))
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}

	slog.DebugContext(ctx, "Snapshot persisted",
		"key", key,
		"transactions", len(state.Transactions),
		"orders", len(state.Orders))
	return nil
}

// Load reads the snapshot stored under key. The second return value is
// false when no snapshot has ever been written.
func (s *SnapshotStore) Load(ctx context.Context, key string) (core.BusinessState, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BusinessState{}, false, nil
	}
	if err != nil {
		return core.BusinessState{}, false, fmt.Errorf("read snapshot %s: %w", key, err)
	}

	var state core.BusinessState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return core.BusinessState{}, false, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return state, true, nil
}
