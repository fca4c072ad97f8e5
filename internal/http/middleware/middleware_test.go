package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens map[string]int64

func (f fakeTokens) Parse(token string) (int64, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return 0, errors.New("invalid token")
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/me", func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := newRouter(Auth(fakeTokens{"good": 42}))

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":42}`, w.Body.String())
}

func TestRateLimiterMemory(t *testing.T) {
	l := NewRateLimiter(nil, 2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	r := newRouter(Auth(fakeTokens{"a": 1, "b": 2}), l.Middleware())

	assert.Equal(t, http.StatusOK, get(r, "a").Code)
	assert.Equal(t, http.StatusOK, get(r, "a").Code)
	w := get(r, "a")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// у другого пользователя свой счетчик
	assert.Equal(t, http.StatusOK, get(r, "b").Code)

	// новое окно
	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, get(r, "a").Code)
}

func TestRateLimiterRedisWindowHasTTL(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	key := "u:" + uuid.NewString()
	l := NewRateLimiter(client, 2, time.Minute)

	assert.True(t, l.Allow(ctx, key))
	assert.True(t, l.Allow(ctx, key))
	assert.False(t, l.Allow(ctx, key))

	ttl, err := client.TTL(ctx, "ratelimit:"+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRateLimiterFallsBackWhenRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	l := NewRateLimiter(client, 1, time.Minute)
	assert.True(t, l.Allow(context.Background(), "ip:1.2.3.4"))
	assert.False(t, l.Allow(context.Background(), "ip:1.2.3.4"))
}
