package testhelpers

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/chefbook/backend/internal/models"
	"github.com/pageza/chefbook/backend/internal/types"
)

// TestPassword is the plain-text password of every user created by CreateUser.
const TestPassword = "correct-horse-battery"

// CreateUser inserts a user with TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string, admin bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsAdmin:      admin,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// ActorFor returns the actor acting as user.
func ActorFor(user *models.User) types.Actor {
	return types.Actor{UserID: user.ID, IsAdmin: user.IsAdmin}
}

func CreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create category %s: %v", name, err)
	}
	return category
}

func CreateMeasurementUnit(t *testing.T, db *gorm.DB, measure string) *models.MeasurementUnit {
	t.Helper()
	unit := &models.MeasurementUnit{Measure: measure}
	if err := db.Create(unit).Error; err != nil {
		t.Fatalf("failed to create measurement unit %s: %v", measure, err)
	}
	return unit
}

// ValidRecipeFields returns recipe fields that pass validation.
func ValidRecipeFields(title string) types.RecipeFields {
	return types.RecipeFields{
		Title:        title,
		Description:  "A test recipe",
		PrepTime:     10,
		PrepTimeUnit: "min",
		CookTime:     20,
		CookTimeUnit: "min",
		SpiceLevel:   1,
	}
}
