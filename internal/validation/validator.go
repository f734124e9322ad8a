// Package validation wraps go-playground/validator and converts its failures
// into domain validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/pageza/chefbook/backend/internal/errors"
	"github.com/pageza/chefbook/backend/internal/models"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the recipe-specific tags registered.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("timeunit", validateTimeUnit)
	_ = v.RegisterValidation("notblank", validateNotBlank)

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain validation error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return domainerrors.Validation(err.Error())
	}

	fields := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fields[e.Field()] = friendlyMessage(e)
	}
	return domainerrors.ValidationWithDetails("validation failed", fields)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "timeunit":
		return "must be one of: " + strings.Join(models.TimeUnitCodes(), " ")
	default:
		return "is invalid"
	}
}

func validateTimeUnit(fl validator.FieldLevel) bool {
	unit := fl.Field().String()
	if unit == "" {
		return true
	}
	return models.TimeUnit(unit).Valid()
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
