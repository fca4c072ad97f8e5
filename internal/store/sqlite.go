package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (collection, id)
)`

// SQLite - встроенное хранилище по умолчанию.
// Одно соединение: транзакции выполняются строго по очереди.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key Key) ([]byte, error) {
	return sqliteGet(ctx, s.db, key)
}

type sqliteQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func sqliteGet(ctx context.Context, q sqliteQuerier, key Key) ([]byte, error) {
	var v []byte
	err := q.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE collection = ? AND id = ?`,
		key.Collection, key.ID,
	).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *SQLite) List(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, value FROM kv WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Value); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLite) Update(ctx context.Context, keys []Key, fn func(Tx) error) error {
	keys = sortedKeys(keys)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	buf := newTxBuffer(keys, func(k Key) ([]byte, error) {
		return sqliteGet(ctx, tx, k)
	})
	if err := fn(buf); err != nil {
		return err
	}

	now := time.Now().UTC()
	err = buf.each(func(k Key, v []byte) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO kv (collection, id, value, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(collection, id) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, k.Collection, k.ID, v, now)
		return err
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
