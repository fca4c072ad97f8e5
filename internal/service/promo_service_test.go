package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"telegram_casino/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromoCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	promo, err := env.promos.Create(ctx, "  welcome ", 100, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME", promo.Code)
	assert.Equal(t, domain.DefaultPromoUsesLimit, promo.UsesLimit)
	assert.Equal(t, 30*24*time.Hour, promo.ExpiresAt.Sub(promo.CreatedAt))

	_, err = env.promos.Create(ctx, "WELCOME", 50, 1, 1)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)

	_, err = env.promos.Create(ctx, "ZERO", 0, 1, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = env.promos.Create(ctx, "NEG", 10, -1, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = env.promos.Create(ctx, "FOREVER", 10, 1, 200000)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = env.promos.Get(ctx, "FOREVER")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	longest, err := env.promos.Create(ctx, "LONGEST", 10, 1, domain.MaxPromoExpiresDays)
	require.NoError(t, err)
	assert.True(t, longest.ExpiresAt.After(longest.CreatedAt))
}

func TestPromoRedeem(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	_, err := env.promos.Create(ctx, "BONUS", 250, 10, 7)
	require.NoError(t, err)

	res, err := env.promos.Redeem(ctx, "bonus", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(250), res.Reward)
	assert.Equal(t, int64(1250), res.NewBalance)

	promo, err := env.promos.Get(ctx, "BONUS")
	require.NoError(t, err)
	assert.Equal(t, 1, promo.UsesCount)
	assert.Equal(t, []int64{1}, promo.RedeemedBy)

	acc, err := env.ledger.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"BONUS"}, acc.RedeemedCodes)

	_, err = env.promos.Redeem(ctx, "BONUS", 1)
	assert.ErrorIs(t, err, domain.ErrAlreadyUsed)
	assert.Equal(t, int64(1250), env.balance(t, 1))

	logs, err := env.audit.Query(ctx, domain.AuditFilter{UserID: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditActionPromoRedeem, logs[0].Action)
}

func TestPromoRedeemCheckOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	_, err := env.promos.Redeem(ctx, "NOPE", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.promos.Create(ctx, "ONCE", 10, 1, 1)
	require.NoError(t, err)
	_, err = env.promos.Redeem(ctx, "ONCE", 1)
	require.NoError(t, err)

	// лимит проверяется раньше повторного использования
	_, err = env.promos.Redeem(ctx, "ONCE", 1)
	assert.ErrorIs(t, err, domain.ErrLimitReached)
	_, err = env.promos.Redeem(ctx, "ONCE", 2)
	assert.ErrorIs(t, err, domain.ErrLimitReached)

	// срок проверяется раньше лимита
	env.promos.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = env.promos.Redeem(ctx, "ONCE", 3)
	assert.ErrorIs(t, err, domain.ErrExpired)

	assert.Equal(t, domain.DefaultStartingBalance, env.balance(t, 3))
}

func TestPromoConcurrentRedeemRespectsLimit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	_, err := env.promos.Create(ctx, "RUSH", 10, 5, 1)
	require.NoError(t, err)

	var ok atomic.Int64
	var wg sync.WaitGroup
	for i := int64(1); i <= 20; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			if _, err := env.promos.Redeem(ctx, "RUSH", userID); err == nil {
				ok.Add(1)
			} else {
				assert.ErrorIs(t, err, domain.ErrLimitReached)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(5), ok.Load())
	promo, err := env.promos.Get(ctx, "RUSH")
	require.NoError(t, err)
	assert.Equal(t, 5, promo.UsesCount)
	assert.Len(t, promo.RedeemedBy, 5)
}

func TestPromoConcurrentSameUserOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	_, err := env.promos.Create(ctx, "DOUBLE", 100, 10, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = env.promos.Redeem(ctx, "DOUBLE", 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1100), env.balance(t, 1))
}
