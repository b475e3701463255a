package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
)

// SQLite stores entries in the kv_entries table.
type SQLite struct {
	db db.DBTX
}

func NewSQLite(conn db.DBTX) *SQLite {
	return &SQLite{db: conn}
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("key %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("reading key %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("writing key %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) List(ctx context.Context, prefix string) ([]Entry, error) {
	// LIKE would treat _ and % in keys as wildcards; compare the prefix directly.
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, updated_at FROM kv_entries WHERE instr(key, ?) = 1 OR ? = '' ORDER BY key`,
		prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing keys %s*: %w", prefix, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var updated string
		if err := rows.Scan(&e.Key, &e.Value, &updated); err != nil {
			return nil, fmt.Errorf("scanning kv entry: %w", err)
		}
		if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return nil, fmt.Errorf("parsing updated_at for %s: %w", e.Key, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
