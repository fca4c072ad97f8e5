package ws

import (
	"net/http"

	"telegram_casino/internal/logger"
	"telegram_casino/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// содержит зависимости для обработки WebSocket
type WSHandler struct {
	Session       *Session
	Tokens        *service.TokenService
	AllowedOrigin string
}

func NewWSHandler(session *Session, tokens *service.TokenService, allowedOrigin string) *WSHandler {
	return &WSHandler{
		Session:       session,
		Tokens:        tokens,
		AllowedOrigin: allowedOrigin,
	}
}

func (h *WSHandler) HandleWS() gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if h.AllowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == h.AllowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "токен обязателен", "code": "unauthenticated"})
			return
		}

		userID, err := h.Tokens.Parse(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "неверный токен", "code": "unauthenticated"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "user_id", userID, "error", err)
			return
		}

		client := NewClient(userID, conn, h.Session)
		go client.Run()
	}
}
