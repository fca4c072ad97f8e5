package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockSerializesSameKey(t *testing.T) {
	l := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("acc:1")
			defer unlock()
			v := counter
			v++
			counter = v
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	assert.Equal(t, 0, l.Len(), "entries must be released once unused")
}

func TestLockMultipleKeysInAnyOrder(t *testing.T) {
	l := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := l.Lock("a", "b")
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := l.Lock("b", "a")
			unlock()
		}()
	}
	wg.Wait()
	require.Equal(t, 0, l.Len())
}

func TestLockDuplicateKeysAndDoubleUnlock(t *testing.T) {
	l := New()
	unlock := l.Lock("x", "x", "y")
	assert.Equal(t, 2, l.Len())
	unlock()
	unlock()
	assert.Equal(t, 0, l.Len())
}
