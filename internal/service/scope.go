package service

import (
	"gorm.io/gorm"

	"github.com/pageza/chefbook/backend/internal/types"
)

// visibleTo limits a recipes query to what the actor may see. Admins see
// everything.
func visibleTo(actor types.Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor.IsAdmin {
			return db
		}
		return db.Where("recipes.owner_id = ?", actor.UserID)
	}
}

// childOf joins a child table (ingredients, steps) to its parent recipe and
// applies the same visibility rule to the parent.
func childOf(table string, actor types.Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Joins("JOIN recipes ON recipes.id = " + table + ".recipe_id")
		return visibleTo(actor)(db)
	}
}
