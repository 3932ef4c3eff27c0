package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farellandr/eventbuddy/internal/helpers"
	"github.com/farellandr/eventbuddy/internal/models"
)

const (
	userIDKey  = "user_id"
	roleKey    = "role"
	claimsKey  = "claims"
	bearerType = "Bearer"
)

func JWTAuthMiddleware(tokens *helpers.TokenIssuer, blacklist *helpers.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, bearerType) || strings.TrimSpace(token) == "" {
			helpers.AbortWithError(c, http.StatusUnauthorized, "Authorization header is missing or malformed")
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			helpers.AbortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if blacklist != nil && blacklist.Contains(claims.ID) {
			helpers.AbortWithError(c, http.StatusUnauthorized, "Token has been revoked")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole must run after JWTAuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, GetRole(c)) {
			helpers.AbortWithError(c, http.StatusForbidden, "You do not have permission to perform this action")
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) uuid.UUID {
	id, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil
	}
	return id.(uuid.UUID)
}

func GetRole(c *gin.Context) models.Role {
	role, exists := c.Get(roleKey)
	if !exists {
		return ""
	}
	return role.(models.Role)
}

func GetClaims(c *gin.Context) *helpers.Claims {
	claims, exists := c.Get(claimsKey)
	if !exists {
		return nil
	}
	return claims.(*helpers.Claims)
}
