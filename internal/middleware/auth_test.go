package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/chefbook/backend/internal/errors"
	"github.com/pageza/chefbook/backend/internal/types"
)

type stubValidator map[string]*types.TokenClaims

func (s stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, errors.Unauthorized("invalid token")
}

func newAuthRouter() *gin.Engine {
	validator := stubValidator{
		"alice": {UserID: 1, Username: "alice"},
		"root":  {UserID: 2, Username: "root", IsAdmin: true},
	}
	router := gin.New()
	router.Use(AuthMiddleware(validator))
	router.GET("/me", func(c *gin.Context) {
		actor, ok := Actor(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "is_admin": actor.IsAdmin})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	router := newAuthRouter()

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic alice", http.StatusUnauthorized},
		{"bad token", "/me", "Bearer mallory", http.StatusUnauthorized},
		{"valid token", "/me", "Bearer alice", http.StatusOK},
		{"lowercase scheme", "/me", "bearer alice", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestActorFromContext(t *testing.T) {
	router := newAuthRouter()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer root")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.JSONEq(t, `{"user_id":2,"is_admin":true}`, rr.Body.String())
}
