package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS casino_kv (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
)`

// Postgres хранит записи в одной таблице; эксклюзивность по ключу дает
// pg_advisory_xact_lock, взятый для каждого объявленного ключа по порядку
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}
	return &Postgres{db: pool}, nil
}

type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func pgGet(ctx context.Context, q pgQuerier, key Key) ([]byte, error) {
	var v []byte
	err := q.QueryRow(ctx,
		`SELECT value FROM casino_kv WHERE collection = $1 AND id = $2`,
		key.Collection, key.ID,
	).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (p *Postgres) Get(ctx context.Context, key Key) ([]byte, error) {
	return pgGet(ctx, p.db, key)
}

func (p *Postgres) List(ctx context.Context, collection string) ([]Record, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, value FROM casino_kv WHERE collection = $1 ORDER BY id`, collection)
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

func (p *Postgres) Update(ctx context.Context, keys []Key, fn func(Tx) error) error {
	keys = sortedKeys(keys)

	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// блокируем ключи в одном порядке, чтобы не было deadlock'ов
	for _, k := range keys {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, k.String()); err != nil {
			return fmt.Errorf("lock %s: %w", k, err)
		}
	}

	buf := newTxBuffer(keys, func(k Key) ([]byte, error) {
		return pgGet(ctx, tx, k)
	})
	if err := fn(buf); err != nil {
		return err
	}

	err = buf.each(func(k Key, v []byte) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO casino_kv (collection, id, value, updated_at) VALUES ($1, $2, $3, now())
			ON CONFLICT (collection, id) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		`, k.Collection, k.ID, v)
		return err
	})
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}
