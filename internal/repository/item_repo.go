package repository

import (
	"context"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/store"
)

// каталог магазина
type ItemRepository struct {
	store store.Store
}

func NewItemRepository(s store.Store) *ItemRepository {
	return &ItemRepository{store: s}
}

func (r *ItemRepository) Key(itemID string) store.Key {
	return store.Key{Collection: store.CollectionItems, ID: itemID}
}

func (r *ItemRepository) Get(ctx context.Context, itemID string) (*domain.ShopItem, error) {
	return getJSON[domain.ShopItem](ctx, r.store, r.Key(itemID))
}

func (r *ItemRepository) GetTx(tx store.Tx, itemID string) (*domain.ShopItem, error) {
	return getJSONTx[domain.ShopItem](tx, r.Key(itemID))
}

func (r *ItemRepository) PutTx(tx store.Tx, item *domain.ShopItem) error {
	return putJSONTx(tx, r.Key(item.ID), item)
}

func (r *ItemRepository) List(ctx context.Context) ([]*domain.ShopItem, error) {
	return listJSON[domain.ShopItem](ctx, r.store, store.CollectionItems)
}
