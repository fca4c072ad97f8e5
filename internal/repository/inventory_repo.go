package repository

import (
	"context"
	"errors"
	"strconv"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/store"
)

// инвентари игроков; отсутствие записи означает пустой инвентарь
type InventoryRepository struct {
	store store.Store
}

func NewInventoryRepository(s store.Store) *InventoryRepository {
	return &InventoryRepository{store: s}
}

func (r *InventoryRepository) Key(userID int64) store.Key {
	return store.Key{Collection: store.CollectionInventories, ID: strconv.FormatInt(userID, 10)}
}

func (r *InventoryRepository) Get(ctx context.Context, userID int64) (*domain.Inventory, error) {
	inv, err := getJSON[domain.Inventory](ctx, r.store, r.Key(userID))
	return orEmpty(userID, inv, err)
}

func (r *InventoryRepository) GetTx(tx store.Tx, userID int64) (*domain.Inventory, error) {
	inv, err := getJSONTx[domain.Inventory](tx, r.Key(userID))
	return orEmpty(userID, inv, err)
}

func (r *InventoryRepository) PutTx(tx store.Tx, inv *domain.Inventory) error {
	return putJSONTx(tx, r.Key(inv.UserID), inv)
}

func orEmpty(userID int64, inv *domain.Inventory, err error) (*domain.Inventory, error) {
	if errors.Is(err, store.ErrNotFound) {
		return &domain.Inventory{UserID: userID, Items: []domain.InventoryEntry{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if inv.Items == nil {
		inv.Items = []domain.InventoryEntry{}
	}
	return inv, nil
}
