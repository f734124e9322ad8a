package util

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	// PgErrorCodeUniqueViolation is the Postgres SQLSTATE for unique_violation.
	PgErrorCodeUniqueViolation = "23505"
	// PgErrorCodeForeignKeyViolation is the Postgres SQLSTATE for foreign_key_violation.
	PgErrorCodeForeignKeyViolation = "23503"
)

// IsDuplicateKey reports whether err is a unique constraint violation. GORM
// translates it when TranslateError is enabled; the driver-level checks cover
// connections opened without translation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == PgErrorCodeUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err is a foreign key violation, e.g.
// a row referencing a category deleted by a concurrent request.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == PgErrorCodeForeignKeyViolation
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
