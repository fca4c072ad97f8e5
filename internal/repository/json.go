package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"telegram_casino/internal/store"
)

// getJSON читает и декодирует запись вне транзакции
func getJSON[T any](ctx context.Context, s store.Store, key store.Key) (*T, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return decode[T](key, raw)
}

// getJSONTx читает и декодирует запись внутри транзакции
func getJSONTx[T any](tx store.Tx, key store.Key) (*T, error) {
	raw, err := tx.Get(key)
	if err != nil {
		return nil, err
	}
	return decode[T](key, raw)
}

func putJSONTx(tx store.Tx, key store.Key, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return tx.Put(key, raw)
}

// listJSON декодирует всю коллекцию в порядке идентификаторов
func listJSON[T any](ctx context.Context, s store.Store, collection string) ([]*T, error) {
	records, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(records))
	for _, r := range records {
		v, err := decode[T](store.Key{Collection: collection, ID: r.ID}, r.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decode[T any](key store.Key, raw []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, nil
}
