package types

import (
	"time"

	"github.com/pageza/chefbook/backend/internal/models"
)

// RecipeResponse is a recipe with its display helpers resolved.
type RecipeResponse struct {
	*models.Recipe
	PrepDisplay string `json:"prep_display"`
	CookDisplay string `json:"cook_display"`
}

func NewRecipeResponse(r *models.Recipe) RecipeResponse {
	return RecipeResponse{
		Recipe:      r,
		PrepDisplay: r.PrepDisplay(),
		CookDisplay: r.CookDisplay(),
	}
}

// FavoriteResponse is one entry in a user's favorites list.
type FavoriteResponse struct {
	ID      uint           `json:"id"`
	AddedOn time.Time      `json:"added_on"`
	Recipe  *models.Recipe `json:"recipe"`
}

// ToggleFavoriteResponse reports the state after a toggle.
type ToggleFavoriteResponse struct {
	RecipeID uint `json:"recipe_id"`
	Added    bool `json:"added"`
}

// AuthResponse carries a signed token and the authenticated user.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ImageUploadResponse is a presigned upload target.
type ImageUploadResponse struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
