package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind tags an AppError with the class of failure it represents.
// The HTTP layer maps every kind to exactly one status code.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidArgument
	KindValidation
	KindNotFound
	KindConflict
	KindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "INVALID_ARGUMENT"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindRateLimited:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Details string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// RateLimitResponse is the 429 body returned when a user exhausts the daily event quota.
type RateLimitResponse struct {
	ErrorResponse
	Limit     int       `json:"limit"`
	Current   int64     `json:"current"`
	NextReset time.Time `json:"nextReset"`
}

// RateLimitInfo describes a denied rate-limit decision.
type RateLimitInfo struct {
	Limit     int
	Current   int64
	NextReset time.Time
}

// AppError represents a custom application error
type AppError struct {
	Kind      ErrorKind
	Message   string
	Errors    []string
	RateLimit *RateLimitInfo
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewInvalidArgumentError(message string) *AppError {
	return &AppError{
		Kind:    KindInvalidArgument,
		Message: message,
	}
}

func NewValidationError(message string, errs ...string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: message,
		Errors:  errs,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Message: message,
	}
}

func NewRateLimitedError(limit int, current int64, nextReset time.Time) *AppError {
	return &AppError{
		Kind:    KindRateLimited,
		Message: fmt.Sprintf("Event creation limit exceeded (%d per day). Try again later.", limit),
		RateLimit: &RateLimitInfo{
			Limit:     limit,
			Current:   current,
			NextReset: nextReset,
		},
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// AsAppError converts any error into an *AppError, treating unknown errors as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindInvalidArgument, KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindRateLimited:
		return fiber.StatusTooManyRequests
	case KindInternal:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes err as a JSON body with the status derived from its kind.
func RespondWithError(c *fiber.Ctx, err error) error {
	appErr := AsAppError(err)

	response := ErrorResponse{
		Message: appErr.Message,
		Code:    appErr.Kind.String(),
		Errors:  appErr.Errors,
	}
	if appErr.Err != nil {
		response.Details = appErr.Err.Error()
	}

	status := StatusFor(appErr.Kind)
	if appErr.Kind == KindRateLimited && appErr.RateLimit != nil {
		return c.Status(status).JSON(RateLimitResponse{
			ErrorResponse: response,
			Limit:         appErr.RateLimit.Limit,
			Current:       appErr.RateLimit.Current,
			NextReset:     appErr.RateLimit.NextReset,
		})
	}
	return c.Status(status).JSON(response)
}
