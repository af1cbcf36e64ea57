// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
)

// Service errors.
var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidType         = fmt.Errorf("%w: type must be income or expense", ErrValidation)
	ErrMissingField        = fmt.Errorf("%w: missing required field", ErrValidation)
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email already registered")
	ErrNationalIDTaken     = errors.New("cpf already registered")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// missingField reports which required field was absent.
func missingField(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

// invalidField reports a field that is present but unacceptable.
func invalidField(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}
