package response

import (
	"errors"

	"gorm.io/gorm"
)

// ErrValidation marks errors caused by rejected client input
var ErrValidation = errors.New("validation failed")

// ValidationError describes a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError describes a missing resource. It matches gorm.ErrRecordNotFound.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func (e *NotFoundError) Unwrap() error {
	return gorm.ErrRecordNotFound
}
