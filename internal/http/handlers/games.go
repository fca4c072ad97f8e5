package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Подбрасывание монеты
func (h *Handler) CoinFlip(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	var req struct {
		Choice string `json:"choice"`
		Bet    int64  `json:"bet"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	res, err := h.Games.PlayCoinFlip(c.Request.Context(), userID, req.Choice, req.Bet)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Слоты
func (h *Handler) Slots(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	var req struct {
		Bet int64 `json:"bet"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	res, err := h.Games.PlaySlots(c.Request.Context(), userID, req.Bet)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Кости: угадать число от 1 до 6
func (h *Handler) Dice(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	var req struct {
		Bet        int64 `json:"bet"`
		Prediction int   `json:"prediction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	res, err := h.Games.PlayDice(c.Request.Context(), userID, req.Bet, req.Prediction)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
