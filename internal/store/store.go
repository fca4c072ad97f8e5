package store

import (
	"context"
	"errors"
	"sort"
)

var (
	ErrNotFound       = errors.New("store: record not found")
	ErrKeyNotDeclared = errors.New("store: key not declared in transaction")
	ErrConflict       = errors.New("store: concurrent modification, retries exhausted")
)

// Коллекции
const (
	CollectionAccounts    = "accounts"
	CollectionPromos      = "promos"
	CollectionItems       = "items"
	CollectionInventories = "inventories"
	CollectionAudit       = "audit"
)

// Key адресует одну запись
type Key struct {
	Collection string
	ID         string
}

func (k Key) String() string {
	return k.Collection + ":" + k.ID
}

type Record struct {
	ID    string
	Value []byte
}

// Tx - транзакция над заранее объявленным набором ключей
type Tx interface {
	Get(key Key) ([]byte, error)
	Put(key Key, value []byte) error
}

// Store - хранилище ключ-значение с транзакциями по ключам.
//
// Update удерживает объявленные ключи эксклюзивно на время fn. Все Put внутри fn
// становятся видимы вместе после успешного возврата; если fn вернула ошибку,
// ничего не записывается. fn может быть вызвана повторно (redis), поэтому
// не должна иметь внешних побочных эффектов.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	List(ctx context.Context, collection string) ([]Record, error)
	Update(ctx context.Context, keys []Key, fn func(Tx) error) error
	Close() error
}

// sortedKeys убирает дубликаты и упорядочивает ключи
func sortedKeys(keys []Key) []Key {
	seen := make(map[Key]struct{}, len(keys))
	out := make([]Key, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Collection != out[j].Collection {
			return out[i].Collection < out[j].Collection
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// txBuffer - общая для всех бэкендов часть транзакции: проверка объявленных
// ключей, чтение собственных записей и буфер Put до коммита
type txBuffer struct {
	declared map[Key]struct{}
	load     func(Key) ([]byte, error)
	writes   map[Key][]byte
	order    []Key
}

func newTxBuffer(keys []Key, load func(Key) ([]byte, error)) *txBuffer {
	declared := make(map[Key]struct{}, len(keys))
	for _, k := range keys {
		declared[k] = struct{}{}
	}
	return &txBuffer{
		declared: declared,
		load:     load,
		writes:   make(map[Key][]byte),
	}
}

func (b *txBuffer) Get(key Key) ([]byte, error) {
	if _, ok := b.declared[key]; !ok {
		return nil, ErrKeyNotDeclared
	}
	if v, ok := b.writes[key]; ok {
		return clone(v), nil
	}
	return b.load(key)
}

func (b *txBuffer) Put(key Key, value []byte) error {
	if _, ok := b.declared[key]; !ok {
		return ErrKeyNotDeclared
	}
	if _, ok := b.writes[key]; !ok {
		b.order = append(b.order, key)
	}
	b.writes[key] = clone(value)
	return nil
}

func (b *txBuffer) each(fn func(Key, []byte) error) error {
	for _, k := range b.order {
		if err := fn(k, b.writes[k]); err != nil {
			return err
		}
	}
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
