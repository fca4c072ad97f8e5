package service

import (
	"context"
	"strings"

	"telegram_casino/internal/domain"
)

// AdminService - граница привилегированных операций. Каждый метод сначала
// проверяет, что actorID входит в список операторов, и только потом
// обращается к состоянию.
type AdminService struct {
	operators map[int64]struct{}
	promos    *PromoService
	shop      *ShopService
	ledger    *Ledger
	audit     *AuditService
	mines     *MinesService
}

// создает новый административный сервис
func NewAdminService(operatorIDs []int64, ledger *Ledger, promos *PromoService, shop *ShopService, mines *MinesService, audit *AuditService) *AdminService {
	ops := make(map[int64]struct{}, len(operatorIDs))
	for _, id := range operatorIDs {
		ops[id] = struct{}{}
	}
	return &AdminService{
		operators: ops,
		promos:    promos,
		shop:      shop,
		ledger:    ledger,
		audit:     audit,
		mines:     mines,
	}
}

func (s *AdminService) IsOperator(userID int64) bool {
	_, ok := s.operators[userID]
	return ok
}

func (s *AdminService) authorize(actorID int64) error {
	if !s.IsOperator(actorID) {
		return domain.ErrUnauthorized
	}
	return nil
}

func (s *AdminService) CreatePromo(ctx context.Context, actorID int64, code string, reward int64, usesLimit, expiresInDays int) (*domain.PromoCode, error) {
	if err := s.authorize(actorID); err != nil {
		return nil, err
	}
	promo, err := s.promos.Create(ctx, code, reward, usesLimit, expiresInDays)
	if err != nil {
		return nil, err
	}
	s.audit.LogAdminAction(ctx, actorID, domain.AuditActionPromoCreate, map[string]interface{}{
		"code":       promo.Code,
		"reward":     promo.Reward,
		"uses_limit": promo.UsesLimit,
		"expires_at": promo.ExpiresAt,
	})
	return promo, nil
}

func (s *AdminService) ListPromos(ctx context.Context, actorID int64) ([]*domain.PromoCode, error) {
	if err := s.authorize(actorID); err != nil {
		return nil, err
	}
	return s.promos.List(ctx)
}

func (s *AdminService) AddItem(ctx context.Context, actorID int64, in NewItem) (*domain.ShopItem, error) {
	if err := s.authorize(actorID); err != nil {
		return nil, err
	}
	item, err := s.shop.AddItem(ctx, in)
	if err != nil {
		return nil, err
	}
	s.audit.LogAdminAction(ctx, actorID, domain.AuditActionItemAdd, map[string]interface{}{
		"item_id":  item.ID,
		"price":    item.Price,
		"quantity": item.Quantity,
	})
	return item, nil
}

// ListCatalog возвращает весь каталог, включая распроданные позиции
func (s *AdminService) ListCatalog(ctx context.Context, actorID int64) ([]*domain.ShopItem, error) {
	if err := s.authorize(actorID); err != nil {
		return nil, err
	}
	return s.shop.ListItems(ctx, true)
}

// представляет статистику платформы
type Stats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalBalance     int64 `json:"total_balance"`     // сумма балансов всех игроков
	TotalGamesPlayed int64 `json:"total_games_played"`
	TotalWins        int64 `json:"total_wins"`
	Promos           int   `json:"promos"`
	ActivePromos     int   `json:"active_promos"` // не просрочены и не исчерпаны
	Items            int   `json:"items"`
	ItemsSold        int   `json:"items_sold"`
	ActiveMinesGames int   `json:"active_mines_games"`
}

// возвращает статистику платформы
func (s *AdminService) Stats(ctx context.Context, actorID int64) (*Stats, error) {
	if err := s.authorize(actorID); err != nil {
		return nil, err
	}

	stats := &Stats{}
	accounts, err := s.ledger.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalUsers = int64(len(accounts))
	for _, a := range accounts {
		stats.TotalBalance += a.Balance
		stats.TotalGamesPlayed += a.GamesPlayed
		stats.TotalWins += a.Wins
	}

	promos, err := s.promos.List(ctx)
	if err != nil {
		return nil, err
	}
	stats.Promos = len(promos)
	now := s.promos.now()
	for _, p := range promos {
		if !p.Expired(now) && !p.Exhausted() {
			stats.ActivePromos++
		}
	}

	items, err := s.shop.ListItems(ctx, true)
	if err != nil {
		return nil, err
	}
	stats.Items = len(items)
	for _, it := range items {
		stats.ItemsSold += it.Sold
	}

	if s.mines != nil {
		stats.ActiveMinesGames = s.mines.ActiveCount()
	}
	return stats, nil
}

// BroadcastRecipients возвращает всех игроков для рассылки и фиксирует ее в аудите
func (s *AdminService) BroadcastRecipients(ctx context.Context, actorID int64, text string) ([]int64, error) {
	if err := s.authorize(actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrInvalidAmount
	}
	ids, err := s.ledger.AccountIDs(ctx)
	if err != nil {
		return nil, err
	}
	s.audit.LogAdminAction(ctx, actorID, domain.AuditActionBroadcast, map[string]interface{}{
		"recipients": len(ids),
		"length":     len([]rune(text)),
	})
	return ids, nil
}

// Audit - записи журнала для оператора, новые первыми
func (s *AdminService) Audit(ctx context.Context, actorID int64, f domain.AuditFilter) ([]*domain.AuditLog, error) {
	if err := s.authorize(actorID); err != nil {
		return nil, err
	}
	return s.audit.Query(ctx, f)
}
