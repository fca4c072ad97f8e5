package domain

import "time"

// Журнал важных действий игроков и операторов
type AuditLog struct {
	ID        string                 `json:"id"`
	UserID    int64                  `json:"user_id"`
	Action    string                 `json:"action"`
	Category  string                 `json:"category"`
	Details   map[string]interface{} `json:"details"`
	CreatedAt time.Time              `json:"created_at"`
}

// Категории совершенных действий
const (
	AuditCategoryPromo = "promo"
	AuditCategoryShop  = "shop"
	AuditCategoryAdmin = "admin"
)

const (
	// Игроки
	AuditActionPromoRedeem  = "promo_redeem"
	AuditActionItemBuy      = "item_buy"
	AuditActionItemTransfer = "item_transfer"

	// Действия операторов
	AuditActionPromoCreate = "promo_create"
	AuditActionItemAdd     = "item_add"
	AuditActionBroadcast   = "broadcast"
)

// AuditFilter отбирает записи журнала; нулевые поля не фильтруют
type AuditFilter struct {
	UserID   int64
	Category string
	Action   string
	Limit    int
}

func (f AuditFilter) Match(l *AuditLog) bool {
	if f.UserID != 0 && l.UserID != f.UserID {
		return false
	}
	if f.Category != "" && l.Category != f.Category {
		return false
	}
	return f.Action == "" || l.Action == f.Action
}
