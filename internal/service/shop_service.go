package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/logger"
	"telegram_casino/internal/metrics"
	"telegram_casino/internal/repository"
	"telegram_casino/internal/store"

	"github.com/oklog/ulid/v2"
)

// ShopService - каталог магазина и инвентари игроков
type ShopService struct {
	store       store.Store
	items       *repository.ItemRepository
	inventories *repository.InventoryRepository
	ledger      *Ledger
	audit       *AuditService
	now         func() time.Time
}

func NewShopService(s store.Store, ledger *Ledger, audit *AuditService) *ShopService {
	return &ShopService{
		store:       s,
		items:       repository.NewItemRepository(s),
		inventories: repository.NewInventoryRepository(s),
		ledger:      ledger,
		audit:       audit,
		now:         time.Now,
	}
}

// NewItem - параметры новой позиции каталога
type NewItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	Glyph       string `json:"glyph"`
}

func (s *ShopService) AddItem(ctx context.Context, in NewItem) (*domain.ShopItem, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" || in.Price <= 0 || in.Quantity <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if in.Name == "" {
		in.Name = in.ID
	}
	if in.Glyph == "" {
		in.Glyph = domain.DefaultItemGlyph
	}

	item := &domain.ShopItem{
		ID:          in.ID,
		Name:        in.Name,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Description: in.Description,
		Glyph:       in.Glyph,
		CreatedAt:   s.now(),
	}

	err := s.store.Update(ctx, []store.Key{s.items.Key(item.ID)}, func(tx store.Tx) error {
		if _, err := s.items.GetTx(tx, item.ID); err == nil {
			return domain.ErrDuplicateID
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return s.items.PutTx(tx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

type PurchaseResult struct {
	Item       *domain.ShopItem      `json:"item"`
	Entry      domain.InventoryEntry `json:"entry"`
	Price      int64                 `json:"price"`
	NewBalance int64                 `json:"balance"`
}

// Buy покупает одну единицу товара. Проверки: не найден, распродан, недостаточно средств.
func (s *ShopService) Buy(ctx context.Context, itemID string, userID int64) (*PurchaseResult, error) {
	suffix := ulid.Make().String()
	res := &PurchaseResult{}

	keys := []store.Key{
		s.items.Key(itemID),
		s.ledger.AccountKey(userID),
		s.inventories.Key(userID),
	}
	err := s.store.Update(ctx, keys, func(tx store.Tx) error {
		item, err := s.items.GetTx(tx, itemID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if !item.InStock() {
			return domain.ErrSoldOut
		}

		newBalance, err := s.ledger.InTx(tx).Debit(userID, item.Price)
		if err != nil {
			return err
		}

		inv, err := s.inventories.GetTx(tx, userID)
		if err != nil {
			return err
		}
		inv.Seq++
		entry := domain.InventoryEntry{
			UniqueID:    fmt.Sprintf("%d_%s_%d_%s", userID, item.ID, inv.Seq, suffix),
			ItemID:      item.ID,
			Name:        item.Name,
			Glyph:       item.Glyph,
			Description: item.Description,
			PurchasedAt: s.now(),
		}
		inv.Append(entry)
		if err := s.inventories.PutTx(tx, inv); err != nil {
			return err
		}

		item.Quantity--
		item.Sold++
		if err := s.items.PutTx(tx, item); err != nil {
			return err
		}

		res.Item = item
		res.Entry = entry
		res.Price = item.Price
		res.NewBalance = newBalance
		return nil
	})

	metrics.Purchases.WithLabelValues(metrics.Result(err, domain.ErrorCode)).Inc()
	if err != nil {
		if !domain.IsBusiness(err) {
			logger.Error("purchase failed", "item_id", itemID, "user_id", userID, "error", err)
			return nil, fmt.Errorf("buy item: %w", err)
		}
		return nil, err
	}

	s.audit.LogPurchase(ctx, userID, itemID, res.Entry.UniqueID, res.Price)
	return res, nil
}

func (s *ShopService) GetItem(ctx context.Context, itemID string) (*domain.ShopItem, error) {
	item, err := s.items.Get(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return item, err
}

// ListItems возвращает каталог по возрастанию цены; распроданные - только по запросу
func (s *ShopService) ListItems(ctx context.Context, includeSoldOut bool) ([]*domain.ShopItem, error) {
	all, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	items := all[:0]
	for _, it := range all {
		if includeSoldOut || it.InStock() {
			items = append(items, it)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Price < items[j].Price })
	return items, nil
}

// Inventory возвращает предметы игрока в порядке получения
func (s *ShopService) Inventory(ctx context.Context, userID int64) ([]domain.InventoryEntry, error) {
	inv, err := s.inventories.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return inv.Items, nil
}
