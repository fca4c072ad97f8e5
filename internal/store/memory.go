package store

import (
	"context"
	"sort"
	"sync"

	"telegram_casino/internal/keylock"
)

// Memory - хранилище в памяти процесса, для тестов и STORE_DRIVER=memory
type Memory struct {
	locks *keylock.Locker

	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		locks: keylock.New(),
		data:  make(map[string]map[string][]byte),
	}
}

func (m *Memory) Get(_ context.Context, key Key) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key.Collection][key.ID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

func (m *Memory) List(_ context.Context, collection string) ([]Record, error) {
	m.mu.RLock()
	records := make([]Record, 0, len(m.data[collection]))
	for id, v := range m.data[collection] {
		records = append(records, Record{ID: id, Value: clone(v)})
	}
	m.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (m *Memory) Update(ctx context.Context, keys []Key, fn func(Tx) error) error {
	keys = sortedKeys(keys)
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	unlock := m.locks.Lock(names...)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	buf := newTxBuffer(keys, func(k Key) ([]byte, error) {
		return m.Get(ctx, k)
	})
	if err := fn(buf); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return buf.each(func(k Key, v []byte) error {
		coll, ok := m.data[k.Collection]
		if !ok {
			coll = make(map[string][]byte)
			m.data[k.Collection] = coll
		}
		coll[k.ID] = v
		return nil
	})
}

func (m *Memory) Close() error {
	return nil
}
