package handlers

import (
	"net/http"
	"strconv"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/service"

	"github.com/gin-gonic/gin"
)

// Админка: доступ проверяется сервисом по списку операторов

func (h *Handler) AdminCreatePromo(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	var req struct {
		Code          string `json:"code" binding:"required"`
		Reward        int64  `json:"reward"`
		UsesLimit     int    `json:"uses_limit"`
		ExpiresInDays int    `json:"expires_in_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	promo, err := h.Admin.CreatePromo(c.Request.Context(), userID, req.Code, req.Reward, req.UsesLimit, req.ExpiresInDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, promo)
}

func (h *Handler) AdminListPromos(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	promos, err := h.Admin.ListPromos(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promos": promos})
}

func (h *Handler) AdminAddItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	var req service.NewItem
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	item, err := h.Admin.AddItem(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// весь каталог, включая распроданные
func (h *Handler) AdminListItems(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	items, err := h.Admin.ListCatalog(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) AdminStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	stats, err := h.Admin.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) AdminAudit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	f := domain.AuditFilter{
		Category: c.Query("category"),
		Action:   c.Query("action"),
		Limit:    50,
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		f.Limit = l
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c)
			return
		}
		f.UserID = id
	}

	logs, err := h.Admin.Audit(c.Request.Context(), userID, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
