package keylock

import (
	"sort"
	"sync"
)

// Locker выдает эксклюзивные секции по строковому ключу.
// Несколько ключей захватываются в отсортированном порядке, поэтому
// вызовы с пересекающимися наборами ключей не могут взаимно заблокироваться.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *Locker {
	return &Locker{locks: make(map[string]*entry)}
}

// Lock захватывает все переданные ключи и возвращает функцию освобождения.
// Повторяющиеся ключи захватываются один раз.
func (l *Locker) Lock(keys ...string) (unlock func()) {
	uniq := dedupSorted(keys)

	held := make([]*entry, 0, len(uniq))
	for _, k := range uniq {
		e := l.acquire(k)
		e.mu.Lock()
		held = append(held, e)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(held) - 1; i >= 0; i-- {
				held[i].mu.Unlock()
				l.release(uniq[i])
			}
		})
	}
}

// Len возвращает количество ключей, которые сейчас удерживаются или ожидаются
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *Locker) acquire(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(l.locks, key)
	}
}

func dedupSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
