package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chefbook/backend/internal/errors"
	"github.com/pageza/chefbook/backend/internal/types"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextIsAdmin  = "is_admin"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			AbortWithError(c, errors.Unauthorized("missing authorization header"))
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			AbortWithError(c, errors.Unauthorized("invalid authorization header format"))
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			AbortWithError(c, errors.Unauthorized("invalid or expired token"))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// Actor returns the authenticated actor set by AuthMiddleware.
func Actor(c *gin.Context) (types.Actor, bool) {
	userID, ok := c.Get(ContextUserID)
	if !ok {
		return types.Actor{}, false
	}
	id, ok := userID.(uint)
	if !ok || id == 0 {
		return types.Actor{}, false
	}
	return types.Actor{UserID: id, IsAdmin: c.GetBool(ContextIsAdmin)}, true
}
