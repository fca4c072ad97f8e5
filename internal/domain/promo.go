package domain

import (
	"slices"
	"strings"
	"time"
)

const (
	DefaultPromoUsesLimit   = 100
	DefaultPromoExpiresDays = 30
	// срок длиннее переполнил бы time.Duration
	MaxPromoExpiresDays = 3650
)

// PromoCode - промокод с наградой, лимитом и сроком действия
type PromoCode struct {
	Code       string    `json:"code"`
	Reward     int64     `json:"reward"`
	UsesLimit  int       `json:"uses_limit"`
	UsesCount  int       `json:"uses_count"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	RedeemedBy []int64   `json:"redeemed_by"`
}

// NormalizePromoCode приводит код к каноническому виду (верхний регистр без пробелов)
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (p *PromoCode) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

func (p *PromoCode) Exhausted() bool {
	return p.UsesCount >= p.UsesLimit
}

func (p *PromoCode) RedeemedByUser(userID int64) bool {
	return slices.Contains(p.RedeemedBy, userID)
}

// DaysLeft - полных дней до истечения (отрицательное значение для просроченных)
func (p *PromoCode) DaysLeft(now time.Time) int {
	return int(p.ExpiresAt.Sub(now).Hours() / 24)
}
