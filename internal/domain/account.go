package domain

import (
	"slices"
	"time"
)

// Начальный баланс нового аккаунта
const DefaultStartingBalance int64 = 1000

// Account - запись игрока в реестре
type Account struct {
	UserID        int64     `json:"user_id"`
	Balance       int64     `json:"balance"`
	GamesPlayed   int64     `json:"games_played"`
	Wins          int64     `json:"wins"`
	RedeemedCodes []string  `json:"redeemed_codes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewAccount(userID, balance int64, now time.Time) *Account {
	return &Account{
		UserID:        userID,
		Balance:       balance,
		RedeemedCodes: []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// HasRedeemed проверяет, активировал ли игрок промокод
func (a *Account) HasRedeemed(code string) bool {
	return slices.Contains(a.RedeemedCodes, code)
}

// WinRate - процент побед
func (a *Account) WinRate() float64 {
	if a.GamesPlayed == 0 {
		return 0
	}
	return float64(a.Wins) / float64(a.GamesPlayed) * 100
}
