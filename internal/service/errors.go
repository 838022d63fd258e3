package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the conditions callers map to distinct responses
var (
	// ErrNotFound indicates a referenced post, comment, like or user is absent.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the actor may not perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput indicates the input failed validation.
	ErrInvalidInput = errors.New("invalid input")
)

// NotFoundError names the missing entity
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ForbiddenError explains why the actor was refused
type ForbiddenError struct {
	Reason string
}

// Error implements the error interface.
func (e *ForbiddenError) Error() string {
	return e.Reason
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func notFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func forbidden(reason string) error {
	return &ForbiddenError{Reason: reason}
}

// Message is the body returned by delete, like and unlike
type Message struct {
	Message string `json:"message"`
}
