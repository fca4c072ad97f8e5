package service

import (
	"context"
	"time"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/logger"
	"telegram_casino/internal/repository"
	"telegram_casino/internal/store"

	"github.com/oklog/ulid/v2"
)

// обрабатывает логирование аудита
type AuditService struct {
	repo *repository.AuditRepository
	now  func() time.Time
}

// создает новый сервис аудита
func NewAuditService(s store.Store) *AuditService {
	return &AuditService{
		repo: repository.NewAuditRepository(s),
		now:  time.Now,
	}
}

// создает новую запись в журнале аудита; ошибки только логируются
func (s *AuditService) Log(ctx context.Context, userID int64, action, category string, details map[string]interface{}) {
	log := &domain.AuditLog{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("не удалось создать запись аудита", "error", err, "action", action, "user_id", userID)
	}
}

// логирует активацию промокода
func (s *AuditService) LogPromoRedeem(ctx context.Context, userID int64, code string, reward int64) {
	s.Log(ctx, userID, domain.AuditActionPromoRedeem, domain.AuditCategoryPromo, map[string]interface{}{
		"code":   code,
		"reward": reward,
	})
}

// логирует покупку в магазине
func (s *AuditService) LogPurchase(ctx context.Context, userID int64, itemID, uniqueID string, price int64) {
	s.Log(ctx, userID, domain.AuditActionItemBuy, domain.AuditCategoryShop, map[string]interface{}{
		"item_id":   itemID,
		"unique_id": uniqueID,
		"price":     price,
	})
}

// логирует передачу предмета
func (s *AuditService) LogTransfer(ctx context.Context, fromID, toID int64, uniqueID string) {
	s.Log(ctx, fromID, domain.AuditActionItemTransfer, domain.AuditCategoryShop, map[string]interface{}{
		"to_user_id": toID,
		"unique_id":  uniqueID,
	})
}

// логирует действие оператора
func (s *AuditService) LogAdminAction(ctx context.Context, adminID int64, action string, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["admin_id"] = adminID

	s.Log(ctx, adminID, action, domain.AuditCategoryAdmin, details)
}

// Query - чтение журнала с фильтром
func (s *AuditService) Query(ctx context.Context, f domain.AuditFilter) ([]*domain.AuditLog, error) {
	return s.repo.Find(ctx, f)
}
