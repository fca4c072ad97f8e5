package handlers

import (
	"net/http"

	"telegram_casino/internal/logger"

	"github.com/gin-gonic/gin"
)

// Вход через Telegram WebApp: проверка initData и выдача JWT
func (h *Handler) TelegramLogin(c *gin.Context) {
	var req struct {
		InitData string `json:"init_data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	tgUser, err := h.Auth.Validate(req.InitData)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "неверные данные авторизации", "code": "unauthenticated"})
		return
	}

	ctx := c.Request.Context()
	acc, err := h.Ledger.GetAccount(ctx, tgUser.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.Tokens.Issue(tgUser.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("user authenticated", "user_id", tgUser.ID, "username", tgUser.Username)
	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user":    tgUser,
		"balance": acc.Balance,
	})
}
