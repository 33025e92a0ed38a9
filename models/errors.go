package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrValidation = errors.New("validation error")

// ValidationError reports a field whose value is missing or outside its
// permitted set. It unwraps to ErrValidation.
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("%s: invalid %s %q (allowed: %s)", ErrValidation, e.Field, e.Value, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("%s: invalid %s %q", ErrValidation, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func MissingField(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("missing field %s", field),
	}
}

func InvalidChoice(field, value string, allowed []string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Allowed: allowed,
	}
}
