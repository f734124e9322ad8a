package main

import (
	"flag"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/chefbook/backend/config"
	"github.com/pageza/chefbook/backend/internal/database"
	"github.com/pageza/chefbook/backend/internal/logger"
	"github.com/pageza/chefbook/backend/internal/models"
)

var defaultCategories = []string{
	"Breakfast", "Lunch", "Dinner", "Dessert", "Snack",
}

var defaultUnits = []string{
	"cup", "tablespoon", "teaspoon", "gram", "kilogram", "millilitre", "litre", "piece", "pinch",
}

func main() {
	adminUser := flag.String("admin-username", "", "Create an admin account with this username")
	adminEmail := flag.String("admin-email", "", "Email for the admin account")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.New("production", "info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Environment.String(), cfg.LogLevel)

	db, err := database.New(cfg, log)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	for _, name := range defaultCategories {
		if err := db.Where(models.Category{Name: name}).FirstOrCreate(&models.Category{}).Error; err != nil {
			log.Error("failed to seed category", "name", name, "error", err)
			os.Exit(1)
		}
	}
	for _, measure := range defaultUnits {
		if err := db.Where(models.MeasurementUnit{Measure: measure}).FirstOrCreate(&models.MeasurementUnit{}).Error; err != nil {
			log.Error("failed to seed measurement unit", "measure", measure, "error", err)
			os.Exit(1)
		}
	}
	log.Info("seeded taxonomy", "categories", len(defaultCategories), "units", len(defaultUnits))

	if *adminUser != "" {
		password := os.Getenv("SEED_ADMIN_PASSWORD")
		if len(password) < 8 {
			log.Error("SEED_ADMIN_PASSWORD must be set to at least 8 characters")
			os.Exit(1)
		}
		if err := seedAdmin(db, *adminUser, *adminEmail, password); err != nil {
			log.Error("failed to seed admin", "username", *adminUser, "error", err)
			os.Exit(1)
		}
		log.Info("seeded admin account", "username", *adminUser)
	}
}

func seedAdmin(db *gorm.DB, username, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if email == "" {
		email = username + "@localhost"
	}
	admin := models.User{
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
	return db.Where(models.User{Username: username}).
		Assign(models.User{IsAdmin: true}).
		FirstOrCreate(&admin).Error
}
