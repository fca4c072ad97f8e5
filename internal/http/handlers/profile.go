package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// Текущий профиль пользователя
func (h *Handler) MyProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	ctx := c.Request.Context()
	acc, err := h.Ledger.GetAccount(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := h.Shop.Inventory(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":         acc.UserID,
		"balance":         acc.Balance,
		"games_played":    acc.GamesPlayed,
		"wins":            acc.Wins,
		"win_rate":        acc.WinRate(),
		"inventory_count": len(items),
		"redeemed_codes":  acc.RedeemedCodes,
		"created_at":      acc.CreatedAt,
	})
}

// Топ игроков по балансу
func (h *Handler) Top(c *gin.Context) {
	limit := defaultTopLimit
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = min(l, maxTopLimit)
	}

	accounts, err := h.Ledger.Top(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	entries := make([]gin.H, 0, len(accounts))
	for i, acc := range accounts {
		entries = append(entries, gin.H{
			"rank":         i + 1,
			"user_id":      acc.UserID,
			"balance":      acc.Balance,
			"games_played": acc.GamesPlayed,
			"wins":         acc.Wins,
		})
	}
	c.JSON(http.StatusOK, gin.H{"top": entries})
}
