package models

import (
	"time"
)

// Favorite marks a recipe as a user's favorite. (UserID, RecipeID) is unique.
type Favorite struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_user_recipe" json:"user_id"`
	RecipeID uint      `gorm:"not null;uniqueIndex:idx_user_recipe;index" json:"recipe_id"`
	Recipe   *Recipe   `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
	AddedOn  time.Time `gorm:"autoCreateTime" json:"added_on"`
}

func (Favorite) TableName() string {
	return "favorite_recipes"
}
