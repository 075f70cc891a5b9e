package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/milesync/milesync-backend/internal/logger"
	"github.com/milesync/milesync-backend/internal/requestdata"
	"github.com/milesync/milesync-backend/internal/services"
)

// RequireAuth verifies the bearer token, attaches request data to the request
// context and carries the X-Refresh-Token header along for token rotation.
func RequireAuth(authService services.AuthService, log *logger.Logger) gin.HandlerFunc {
	authLog := log.With("middleware", "RequireAuth")
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
			return
		}

		ctx, err := authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			authLog.Warn("Token verification failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if rd := requestdata.GetRequestData(ctx); rd != nil {
			rd.RefreshToken = c.GetHeader("X-Refresh-Token")
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}
