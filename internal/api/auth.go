package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chefbook/backend/internal/service"
	"github.com/pageza/chefbook/backend/internal/types"
)

type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterPublicRoutes registers the unauthenticated auth endpoints.
func (h *AuthHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

// RegisterRoutes registers the account endpoints on an authenticated group.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	account := router.Group("/account")
	{
		account.GET("", h.GetAccount)
		account.PUT("", h.UpdateAccount)
		account.DELETE("", h.DeleteAccount)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.AuthResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.AuthResponse{Token: token, User: user})
}

func (h *AuthHandler) GetAccount(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	user, err := h.authService.GetUser(c.Request.Context(), actor.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateAccount(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req types.UpdateAccountRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.authService.UpdateAccount(c.Request.Context(), actor, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.authService.DeleteAccount(c.Request.Context(), actor, actor.UserID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
