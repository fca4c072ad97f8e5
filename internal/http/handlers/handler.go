package handlers

import (
	"errors"
	"net/http"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/http/middleware"
	"telegram_casino/internal/logger"
	"telegram_casino/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler - HTTP-обработчики API казино
type Handler struct {
	Ledger    *service.Ledger
	Games     *service.GameService
	Mines     *service.MinesService
	Promos    *service.PromoService
	Shop      *service.ShopService
	Transfers *service.TransferService
	Admin     *service.AdminService
	Tokens    *service.TokenService
	Auth      *service.TelegramAuth
}

func getUserID(c *gin.Context) (int64, bool) {
	return middleware.UserID(c)
}

func unauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация", "code": "unauthenticated"})
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "неверный запрос", "code": "bad_request"})
}

// respondError отвечает ошибкой с HTTP-статусом по ее виду
func respondError(c *gin.Context, err error) {
	code := domain.ErrorCode(err)
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "внутренняя ошибка сервера", "code": code})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrNoActiveSession):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateID),
		errors.Is(err, domain.ErrAlreadyUsed),
		errors.Is(err, domain.ErrSessionAlreadyActive),
		errors.Is(err, domain.ErrSoldOut):
		return http.StatusConflict
	case domain.IsBusiness(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
