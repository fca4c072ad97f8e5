package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"telegram_casino/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buyItems(t *testing.T, env *testEnv, userID int64, ids ...string) []domain.InventoryEntry {
	t.Helper()
	ctx := context.Background()
	var out []domain.InventoryEntry
	for _, id := range ids {
		if _, err := env.shop.GetItem(ctx, id); err != nil {
			_, err := env.shop.AddItem(ctx, NewItem{ID: id, Name: id, Price: 10, Quantity: 100})
			require.NoError(t, err)
		}
		res, err := env.shop.Buy(ctx, id, userID)
		require.NoError(t, err)
		out = append(out, res.Entry)
	}
	return out
}

func TestTransferByUniqueID(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	entries := buyItems(t, env, 1, "a", "b", "c")

	res, err := env.transfer.Transfer(ctx, 1, 2, entries[1].UniqueID)
	require.NoError(t, err)
	assert.Equal(t, entries[1].UniqueID, res.Entry.UniqueID)
	assert.Equal(t, 2, res.SenderCount)
	assert.Equal(t, 1, res.RecipientCount)

	from, err := env.shop.Inventory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, []string{from[0].ItemID, from[1].ItemID})

	to, err := env.shop.Inventory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, entries[1].UniqueID, to[0].UniqueID)
	assert.Equal(t, "b", to[0].ItemID)

	// получатель получил аккаунт
	assert.Equal(t, domain.DefaultStartingBalance, env.balance(t, 2))

	_, err = env.transfer.Transfer(ctx, 1, 3, entries[1].UniqueID)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestTransferAt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	entries := buyItems(t, env, 1, "a", "b")

	_, err := env.transfer.TransferAt(ctx, 1, 2, 2)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	_, err = env.transfer.TransferAt(ctx, 1, 2, -1)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	res, err := env.transfer.TransferAt(ctx, 1, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, entries[0].UniqueID, res.Entry.UniqueID)
}

func TestTransferSelf(t *testing.T) {
	env := newTestEnv(t, nil)
	entries := buyItems(t, env, 1, "a")

	_, err := env.transfer.Transfer(context.Background(), 1, 1, entries[0].UniqueID)
	assert.ErrorIs(t, err, domain.ErrSelfTransfer)
}

func TestTransferConcurrentSameEntryMovesOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	entries := buyItems(t, env, 1, "relic")

	var ok atomic.Int64
	var wg sync.WaitGroup
	for to := int64(2); to <= 6; to++ {
		wg.Add(1)
		go func(to int64) {
			defer wg.Done()
			if _, err := env.transfer.Transfer(ctx, 1, to, entries[0].UniqueID); err == nil {
				ok.Add(1)
			} else {
				assert.ErrorIs(t, err, domain.ErrItemNotFound)
			}
		}(to)
	}
	wg.Wait()

	assert.Equal(t, int64(1), ok.Load())
	total := 0
	for u := int64(1); u <= 6; u++ {
		inv, err := env.shop.Inventory(ctx, u)
		require.NoError(t, err)
		total += len(inv)
	}
	assert.Equal(t, 1, total, "an entry is never duplicated")
}
