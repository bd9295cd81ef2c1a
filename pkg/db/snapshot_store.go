package db

import (
	"context"
	"database/sql"

	"pokerroom-server/pkg/room"
)

// SnapshotStore is a key-value snapshot store over Postgres. Each Put is a
// single-row upsert, so writes are atomic per key.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore returns a store over the given database
func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Get returns the snapshot for the key
func (s *SnapshotStore) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT snapshot FROM snapshots WHERE key = $1`

	var snapshot []byte
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&snapshot); err != nil {
		if err == sql.ErrNoRows {
			return nil, room.ErrNotFound
		}

		return nil, err
	}

	return snapshot, nil
}

// Put stores the snapshot under the key
func (s *SnapshotStore) Put(ctx context.Context, key string, snapshot []byte) error {
	const query = `
INSERT INTO snapshots (key, snapshot, updated)
VALUES ($1, $2, (NOW() AT TIME ZONE 'utc'))
ON CONFLICT (key) DO UPDATE
SET snapshot = EXCLUDED.snapshot,
    updated = (NOW() AT TIME ZONE 'utc')`

	_, err := s.db.ExecContext(ctx, query, key, snapshot)
	return err
}

// Delete removes the snapshot for the key
func (s *SnapshotStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM snapshots WHERE key = $1`

	_, err := s.db.ExecContext(ctx, query, key)
	return err
}

// ListWithPrefix returns every snapshot whose key starts with the prefix
func (s *SnapshotStore) ListWithPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	const query = `SELECT snapshot FROM snapshots WHERE key LIKE $1 || '%' ORDER BY key`

	rows, err := s.db.QueryContext(ctx, query, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots [][]byte
	for rows.Next() {
		var snapshot []byte
		if err := rows.Scan(&snapshot); err != nil {
			return nil, err
		}

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}
