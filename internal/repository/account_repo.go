package repository

import (
	"context"
	"strconv"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/store"
)

// операции с записями аккаунтов
type AccountRepository struct {
	store store.Store
}

func NewAccountRepository(s store.Store) *AccountRepository {
	return &AccountRepository{store: s}
}

func (r *AccountRepository) Key(userID int64) store.Key {
	return store.Key{Collection: store.CollectionAccounts, ID: strconv.FormatInt(userID, 10)}
}

// возвращает store.ErrNotFound, если аккаунта нет
func (r *AccountRepository) Get(ctx context.Context, userID int64) (*domain.Account, error) {
	return getJSON[domain.Account](ctx, r.store, r.Key(userID))
}

func (r *AccountRepository) GetTx(tx store.Tx, userID int64) (*domain.Account, error) {
	return getJSONTx[domain.Account](tx, r.Key(userID))
}

func (r *AccountRepository) PutTx(tx store.Tx, a *domain.Account) error {
	return putJSONTx(tx, r.Key(a.UserID), a)
}

func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	return listJSON[domain.Account](ctx, r.store, store.CollectionAccounts)
}
