package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"telegram_casino/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter - счетчик запросов на пользователя в фиксированном окне.
// С redis счетчик общий для всех инстансов, без него - в памяти процесса.
type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	state map[string]*window
}

type window struct {
	start time.Time
	count int
}

func NewRateLimiter(client *redis.Client, limit int, period time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 30
	}
	if period <= 0 {
		period = 10 * time.Second
	}
	return &RateLimiter{
		redis:  client,
		limit:  limit,
		window: period,
		now:    time.Now,
		state:  make(map[string]*window),
	}
}

// Allow учитывает запрос и сообщает, укладывается ли он в лимит
func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	if l.redis != nil {
		n, err := l.incrRedis(ctx, key)
		if err == nil {
			return n <= int64(l.limit)
		}
		// при недоступном redis считаем в памяти
		logger.Warn("rate limiter: redis unavailable", "error", err)
	}
	return l.incrMemory(key) <= l.limit
}

// окно создается вместе с TTL в одной транзакции: ключ без срока жизни невозможен
func (l *RateLimiter) incrRedis(ctx context.Context, key string) (int64, error) {
	rk := "ratelimit:" + key
	var incr *redis.IntCmd
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, rk, 0, l.window)
		incr = pipe.Incr(ctx, rk)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (l *RateLimiter) incrMemory(key string) int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.state[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &window{start: now}
		l.state[key] = w
		l.prune(now)
	}
	w.count++
	return w.count
}

// удаляет истекшие окна; вызывается под mu
func (l *RateLimiter) prune(now time.Time) {
	for k, w := range l.state {
		if now.Sub(w.start) >= l.window {
			delete(l.state, k)
		}
	}
}

// Middleware ограничивает запросы авторизованного пользователя, иначе - по IP
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID, ok := UserID(c); ok {
			key = "u:" + strconv.FormatInt(userID, 10)
		}
		if !l.Allow(c.Request.Context(), key) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(l.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "слишком много запросов, попробуйте позже", "code": "rate_limited"})
			return
		}
		c.Next()
	}
}
