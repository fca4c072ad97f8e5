package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Витрина: только предметы в наличии, по возрастанию цены
func (h *Handler) ListShop(c *gin.Context) {
	items, err := h.Shop.ListItems(c.Request.Context(), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) BuyItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	var req struct {
		ItemID string `json:"item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	res, err := h.Shop.Buy(c.Request.Context(), req.ItemID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
