package repository

import (
	"context"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/store"
)

type PromoRepository struct {
	store store.Store
}

func NewPromoRepository(s store.Store) *PromoRepository {
	return &PromoRepository{store: s}
}

// код должен быть уже нормализован
func (r *PromoRepository) Key(code string) store.Key {
	return store.Key{Collection: store.CollectionPromos, ID: code}
}

func (r *PromoRepository) Get(ctx context.Context, code string) (*domain.PromoCode, error) {
	return getJSON[domain.PromoCode](ctx, r.store, r.Key(code))
}

func (r *PromoRepository) GetTx(tx store.Tx, code string) (*domain.PromoCode, error) {
	return getJSONTx[domain.PromoCode](tx, r.Key(code))
}

func (r *PromoRepository) PutTx(tx store.Tx, p *domain.PromoCode) error {
	return putJSONTx(tx, r.Key(p.Code), p)
}

func (r *PromoRepository) List(ctx context.Context) ([]*domain.PromoCode, error) {
	return listJSON[domain.PromoCode](ctx, r.store, store.CollectionPromos)
}
