package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Активация промокода
func (h *Handler) RedeemPromo(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	res, err := h.Promos.Redeem(c.Request.Context(), req.Code, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
