package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) MinesStart(c *gin.Context) {
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

	res, err := h.Mines.Start(c.Request.Context(), userID, req.Bet)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// открытие ячейки; row и col считаются от 0
func (h *Handler) MinesOpen(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	var req struct {
		Row *int `json:"row" binding:"required"`
		Col *int `json:"col" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	res, err := h.Mines.Open(c.Request.Context(), userID, *req.Row, *req.Col)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) MinesCashOut(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	res, err := h.Mines.CashOut(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Текущая игра пользователя
func (h *Handler) MinesState(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	snap, err := h.Mines.State(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	acc, err := h.Ledger.GetAccount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": snap, "balance": acc.Balance})
}
