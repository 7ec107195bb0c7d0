package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iut-charges-api/internal/models"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
	"github.com/noah-isme/iut-charges-api/pkg/response"
)

// RequireRoles lets the request through only when the authenticated user holds one of the roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok || claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// WritesRequire guards mutating methods with RequireRoles and lets reads through.
func WritesRequire(roles ...models.UserRole) gin.HandlerFunc {
	guard := RequireRoles(roles...)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case "GET", "HEAD", "OPTIONS":
			c.Next()
		default:
			guard(c)
		}
	}
}
