package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors returned by core operations.
var (
	ErrEntryNotFound   = errors.New("fuel entry not found")
	ErrInvalidDate     = errors.New("invalid entry date")
	ErrInvalidUnit     = errors.New("invalid volume unit")
	ErrInvalidMonthKey = errors.New("invalid month key")
)

// ValidationError describes an invalid field with an associated message.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates validation errors for operations.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v))
	for i, ve := range v {
		if ve.Field != "" {
			parts[i] = fmt.Sprintf("%s: %s", ve.Field, ve.Message)
			continue
		}
		parts[i] = ve.Message
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, ", "))
}

// Has reports whether the provided field has a validation error.
func (v ValidationErrors) Has(field string) bool {
	for _, ve := range v {
		if ve.Field == field {
			return true
		}
	}
	return false
}

// AppendIf adds the error when the condition is true, returning the new slice.
func (v ValidationErrors) AppendIf(cond bool, field, message string) ValidationErrors {
	if cond {
		v = append(v, ValidationError{Field: field, Message: message})
	}
	return v
}

// Prefixed returns a copy with every field name prefixed, used when
// validating items of a batch.
func (v ValidationErrors) Prefixed(prefix string) ValidationErrors {
	out := make(ValidationErrors, len(v))
	for i, ve := range v {
		out[i] = ValidationError{Field: prefix + "." + ve.Field, Message: ve.Message}
	}
	return out
}

// IsValidation reports whether err carries ValidationErrors.
func IsValidation(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}
