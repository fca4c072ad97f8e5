package http

import (
	nethttp "net/http"
	"time"

	"telegram_casino/internal/http/handlers"
	"telegram_casino/internal/http/middleware"
	"telegram_casino/internal/logger"
	"telegram_casino/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Handler *handlers.Handler
	WS      *ws.WSHandler
	Limiter *middleware.RateLimiter
	Version string
}

// NewRouter собирает gin-движок со всеми маршрутами API
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLog())

	// CORS для прода и связи фронта с бэкендом(разные домены)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == nethttp.MethodOptions {
			c.AbortWithStatus(nethttp.StatusNoContent)
			return
		}
		c.Next()
	})

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := d.Handler

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok", "version": d.Version})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if d.WS != nil {
		r.GET("/ws", d.WS.HandleWS())
	}

	api := r.Group("/api")
	api.POST("/auth/telegram", h.TelegramLogin)

	authed := api.Group("")
	authed.Use(middleware.Auth(h.Tokens))
	if d.Limiter != nil {
		authed.Use(d.Limiter.Middleware())
	}

	authed.GET("/profile", h.MyProfile)
	authed.GET("/top", h.Top)

	authed.POST("/games/coinflip", h.CoinFlip)
	authed.POST("/games/slots", h.Slots)
	authed.POST("/games/dice", h.Dice)

	authed.POST("/mines/start", h.MinesStart)
	authed.POST("/mines/open", h.MinesOpen)
	authed.POST("/mines/cashout", h.MinesCashOut)
	authed.GET("/mines/state", h.MinesState)

	authed.POST("/promo/redeem", h.RedeemPromo)

	authed.GET("/shop", h.ListShop)
	authed.POST("/shop/buy", h.BuyItem)
	authed.GET("/inventory", h.MyInventory)
	authed.POST("/inventory/transfer", h.TransferItem)

	admin := authed.Group("/admin")
	admin.POST("/promos", h.AdminCreatePromo)
	admin.GET("/promos", h.AdminListPromos)
	admin.POST("/items", h.AdminAddItem)
	admin.GET("/items", h.AdminListItems)
	admin.GET("/stats", h.AdminStats)
	admin.GET("/audit", h.AdminAudit)
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
