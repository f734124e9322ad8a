package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/chefbook/backend/internal/models"
)

// RunMigrations brings the schema up to date with the models.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
