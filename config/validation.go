package config

import (
	"fmt"
	"strings"
)

// ValidateConfig checks that the configuration is usable for its environment
// and reports every problem at once.
func ValidateConfig(cfg *Config) error {
	var problems []string

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBUser == "" {
			problems = append(problems, "DB_USER (or db_user secret) is required for postgres")
		}
		if cfg.Environment == Production && cfg.DBPassword == "" {
			problems = append(problems, "DB_PASSWORD (or db_password secret) is required in production")
		}
	case DriverSQLite:
		if cfg.Environment == Production {
			problems = append(problems, "sqlite is not supported in production")
		}
		if cfg.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH is required for sqlite")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown DB_DRIVER %q", cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET (or jwt_secret secret) is required")
	} else if cfg.Environment == Production && len(cfg.JWTSecret) < 32 {
		problems = append(problems, "JWT_SECRET must be at least 32 characters in production")
	}

	if cfg.Environment == Production && !cfg.RedisEnabled() {
		problems = append(problems, "REDIS_URL or REDIS_HOST is required in production")
	}

	if cfg.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}
	if cfg.WizardTTL <= 0 {
		problems = append(problems, "WIZARD_TTL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "\n"))
	}
	return nil
}
