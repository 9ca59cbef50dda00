package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an application error carrying a stable code and an HTTP status.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors by code so sentinel comparisons survive wrapping.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// NewNotFound creates a 404 error for a missing entity.
func NewNotFound(entity, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", entity, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidation creates a 400 error for invalid input.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewConflict creates a 409 error for a state conflict.
func NewConflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
	}
}

// NewForbidden creates a 403 error.
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// NewInternal creates a 500 error wrapping an underlying cause.
func NewInternal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Domain-specific sentinels. Handlers and tests compare against these with errors.Is.
var (
	ErrDriverNotFound = &AppError{Code: "DRIVER_NOT_FOUND", Message: "driver not found", Status: http.StatusNotFound}
	ErrRiderNotFound  = &AppError{Code: "RIDER_NOT_FOUND", Message: "rider not found", Status: http.StatusNotFound}
	ErrRideNotFound   = &AppError{Code: "RIDE_NOT_FOUND", Message: "ride not found", Status: http.StatusNotFound}

	ErrAlreadyBooked     = &AppError{Code: "ALREADY_BOOKED", Message: "rider has already booked this ride", Status: http.StatusConflict}
	ErrInsufficientSeats = &AppError{Code: "INSUFFICIENT_SEATS", Message: "not enough seats available", Status: http.StatusConflict}

	ErrInvalidSeatCount = &AppError{Code: "INVALID_SEAT_COUNT", Message: "seat count must be at least 1", Status: http.StatusBadRequest}
)

// AsAppError converts any error to an AppError, falling back to a generic internal error.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal("an unexpected error occurred", err)
}
