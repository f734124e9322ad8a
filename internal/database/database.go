package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/chefbook/backend/config"
)

// New opens the configured database and tunes its connection pool.
func New(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
		log.Info("opening sqlite database", "path", cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.PostgresDSN())
		log.Info("connecting to database", "host", cfg.DBHost, "port", cfg.DBPort, "user", cfg.DBUser, "name", cfg.DBName)
	}

	db, err := Open(dialector, NewGormLogger(log))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting database handle: %w", err)
	}
	if cfg.DBDriver == config.DriverSQLite {
		// SQLite serialises writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	log.Info("successfully connected to database", "driver", cfg.DBDriver)
	return db, nil
}

// Open wraps gorm.Open with the settings every connection in this service
// relies on: translated driver errors so unique violations surface as
// gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector, gormLogger logger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return db, nil
}

// NewGormLogger routes GORM's statement log through slog.
func NewGormLogger(log *slog.Logger) logger.Interface {
	return logger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelDebug),
		logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// HealthCheck checks if the database is accessible
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
