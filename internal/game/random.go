package game

import (
	"crypto/rand"
	"math/big"
	"sync"
)

// Rand - источник случайности для игр; подменяется в тестах
type Rand interface {
	// Intn возвращает число из [0, n)
	Intn(n int) int
}

// CryptoRand - криптографически безопасный источник по умолчанию
type CryptoRand struct{}

func (CryptoRand) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// запасной вариант - никогда не должно происходить
		return 0
	}
	return int(v.Int64())
}

// ScriptedRand возвращает заранее заданные значения по кругу (по модулю n)
type ScriptedRand struct {
	mu     sync.Mutex
	values []int
	pos    int
}

func NewScriptedRand(values ...int) *ScriptedRand {
	return &ScriptedRand{values: values}
}

func (s *ScriptedRand) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.values) == 0 || n <= 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return ((v % n) + n) % n
}

// sample выбирает k различных чисел из [0, n) (частичный Фишер-Йетс)
func sample(r Rand, n, k int) []int {
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	for i := 0; i < k && i < n; i++ {
		j := i + r.Intn(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	if k > n {
		k = n
	}
	return pool[:k]
}
