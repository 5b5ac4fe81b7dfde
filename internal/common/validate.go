package common

import (
	"errors"

	validator "github.com/go-playground/validator/v10"
)

// NewValidator constructs the request validator shared by all handlers.
func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// ValidationErrorFrom converts a validator failure into an AppError whose
// details name the offending fields.
func ValidationErrorFrom(err error) *AppError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]map[string]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, map[string]string{
				"field": fe.Field(),
				"rule":  fe.Tag(),
			})
		}
		return ValidationError("invalid request payload", details)
	}
	return ValidationError("invalid request payload", nil)
}
