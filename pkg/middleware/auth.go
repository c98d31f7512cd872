package middleware

import (
	"context"
	"net/http"
	"strings"

	"hub-notifier/pkg/authutils"
	"hub-notifier/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenVerifier проверяет строку токена и возвращает claims.
type TokenVerifier func(ctx context.Context, tokenString string) (*authutils.Claims, error)

const (
	userIDKey = "user_id"
	claimsKey = "claims"
)

// GinAuth требует заголовок Authorization: Bearer <jwt>.
// Любая ошибка проверки дает 401 с телом "Unauthorized" (контракт мобильного клиента).
func GinAuth(verifier TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := log.With(zap.String("path", c.Request.URL.Path))

		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			l.Warn("Authorization header missing or malformed")
			c.String(http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		claims, err := verifier(c.Request.Context(), tokenString)
		if err != nil {
			l.Warn("Token verification failed", zap.Error(err), zap.String("tokenSnippet", logger.TokenPrefix(tokenString)))
			c.String(http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID())
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// GetUserID возвращает ID пользователя, выставленный GinAuth.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// SetUserID кладет ID пользователя в контекст (используется в тестах вместо GinAuth).
func SetUserID(c *gin.Context, userID string) {
	c.Set(userIDKey, userID)
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
