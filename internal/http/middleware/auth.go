package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ключ контекста gin, под которым лежит id пользователя
const UserIDKey = "user_id"

// TokenParser проверяет токен сессии и возвращает id пользователя
type TokenParser interface {
	Parse(token string) (int64, error)
}

// Auth требует заголовок Authorization: Bearer <jwt>
func Auth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация", "code": "unauthenticated"})
			return
		}
		userID, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(authz, "Bearer ")))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "неверный токен", "code": "unauthenticated"})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID достает id пользователя, установленный Auth
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
