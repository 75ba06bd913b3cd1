package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/utils"
)

// SessionMiddleware authenticates a request from its bearer token: the
// JWT must verify and the token must still exist in redis (logout
// revokes it there). The resolved user lands in the request context.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if auth == "" {
			c.Next()
			return
		}
		auth = strings.TrimPrefix(auth, "Bearer ")

		validate, err := utils.JwtValidate(auth)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		claim, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		// a token missing from redis has been logged out
		if config.GetRedisDB() != nil {
			_, exists, err := config.GetRedisValue("Token:" + auth)
			if err == nil && !exists {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
				c.Abort()
				return
			}
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), auth)
		ctx = utils.SetUserIdInContext(ctx, claim.ID)
		ctx = utils.SetUsernameInContext(ctx, claim.Username)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireUser rejects requests that did not authenticate.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := utils.GetUserIdFromContext(c.Request.Context())
		if !ok || userId == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CorrelationIdMiddleware tags every request with a correlation id,
// propagating the caller's when present.
func CorrelationIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := c.Request.Header.Get("X-Correlation-Id")
		if correlationId == "" {
			correlationId = uuid.New().String()
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationId)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Correlation-Id", correlationId)
		c.Next()
	}
}
