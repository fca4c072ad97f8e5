package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) MyInventory(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	items, err := h.Shop.Inventory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Передача предмета другому игроку по уникальному id записи
func (h *Handler) TransferItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	var req struct {
		UniqueID string `json:"unique_id" binding:"required"`
		ToUserID int64  `json:"to_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	res, err := h.Transfers.Transfer(c.Request.Context(), userID, req.ToUserID, req.UniqueID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
