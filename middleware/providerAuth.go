package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"repairhub/utils"
)

// Context keys set by JWTAuthProviderMiddleware.
const (
	ProviderIDKey   = "providerID"
	ProviderNameKey = "providerName"
)

// JWTAuthProviderMiddleware validates the provider's bearer token and puts the
// provider id and display name on the context.
func JWTAuthProviderMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		identity, err := utils.ExtractProviderFromToken(tokenString)
		if err != nil {
			logger.Warn("Provider token rejected", zap.String("ip", getClientIP(c)), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ProviderIDKey, identity.ID)
		c.Set(ProviderNameKey, identity.Name)
		c.Next()
	}
}
