package service

import (
	"context"
	"testing"
	"time"

	"telegram_casino/internal/game"
	"telegram_casino/internal/store"

	"github.com/stretchr/testify/require"
)

const testOperator int64 = 999

type testEnv struct {
	store    store.Store
	ledger   *Ledger
	audit    *AuditService
	promos   *PromoService
	shop     *ShopService
	transfer *TransferService
	games    *GameService
	mines    *MinesService
	admin    *AdminService
}

func newTestEnv(t *testing.T, r game.Rand) *testEnv {
	t.Helper()
	s := store.NewMemory()
	t.Cleanup(func() { _ = s.Close() })

	ledger := NewLedger(s, 0)
	audit := NewAuditService(s)
	promos := NewPromoService(s, ledger, audit)
	shop := NewShopService(s, ledger, audit)
	mines := NewMinesService(ledger, r, time.Hour, time.Minute)
	return &testEnv{
		store:    s,
		ledger:   ledger,
		audit:    audit,
		promos:   promos,
		shop:     shop,
		transfer: NewTransferService(s, ledger, audit),
		games:    NewGameService(ledger, r),
		mines:    mines,
		admin:    NewAdminService([]int64{testOperator}, ledger, promos, shop, mines, audit),
	}
}

func (e *testEnv) balance(t *testing.T, userID int64) int64 {
	t.Helper()
	acc, err := e.ledger.GetAccount(context.Background(), userID)
	require.NoError(t, err)
	return acc.Balance
}
