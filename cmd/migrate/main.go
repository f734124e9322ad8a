package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/lib/pq"

	"github.com/pageza/chefbook/backend/config"
	"github.com/pageza/chefbook/backend/internal/database"
	"github.com/pageza/chefbook/backend/internal/logger"
)

func main() {
	createDB := flag.Bool("create-db", true, "Create the database if it does not exist (postgres only)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.New("production", "info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Environment.String(), cfg.LogLevel)

	if *createDB && cfg.DBDriver == config.DriverPostgres {
		if err := ensureDatabase(cfg); err != nil {
			log.Error("failed to create database", "name", cfg.DBName, "error", err)
			os.Exit(1)
		}
	}

	db, err := database.New(cfg, log)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("all migrations applied successfully")
}

// ensureDatabase connects to the maintenance database and creates cfg.DBName
// when it is missing.
func ensureDatabase(cfg *config.Config) error {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=postgres sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBSSLMode,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	var exists bool
	if err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check database: %w", err)
	}
	if exists {
		return nil
	}
	if _, err := db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(cfg.DBName)); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	return nil
}
