package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lostfound/backend/internal/query"
	"github.com/lostfound/backend/internal/service"
)

// Error represents an API error
type Error struct {
	Code    int    `json:"statusCode"`
	Message string `json:"message"`
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// Common API errors
var (
	ErrUnauthorized = NewError(http.StatusUnauthorized, "Authentication required")
	ErrInternal     = NewError(http.StatusInternalServerError, "Internal server error")
)

// FromError maps a service error to its HTTP form. Unknown errors become a
// generic 500 so storage details never reach clients.
func FromError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, query.ErrInvalidFilter):
		return NewError(http.StatusBadRequest, err.Error())
	default:
		return ErrInternal
	}
}
