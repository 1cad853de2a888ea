package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/tripsplit/tripsplit-backend/logger"
)

type ErrorType string

const (
	ValidationError      ErrorType = "VALIDATION_ERROR"
	NotFoundError        ErrorType = "NOT_FOUND"
	AuthError            ErrorType = "AUTHENTICATION_ERROR"
	DatabaseError        ErrorType = "DATABASE_ERROR"
	ServerError          ErrorType = "SERVER_ERROR"
	ForbiddenError       ErrorType = "FORBIDDEN"
	TripNotFoundError    ErrorType = "TRIP_NOT_FOUND"
	ConflictError        ErrorType = "CONFLICT"
	RateLimitError       ErrorType = "RATE_LIMIT_EXCEEDED"
	ExternalServiceError ErrorType = "EXTERNAL_SERVICE_ERROR"
	TimeoutError         ErrorType = "REQUEST_TIMEOUT"
	CanceledError        ErrorType = "REQUEST_CANCELED"
)

// StatusClientClosedRequest is the non-standard status for requests the
// client gave up on.
const StatusClientClosedRequest = 499

// Codes carried in AppError.Code for errors callers branch on.
const (
	CodeTripAlreadyClosed = "TRIP_ALREADY_CLOSED"
	CodeTripCloseInFlight = "TRIP_CLOSE_IN_PROGRESS"
	CodeCurrencyExists    = "CURRENCY_EXISTS"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code,omitempty"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying error to errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the status to answer with, falling back to the
// default for the error type when none was set explicitly.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// Helper functions for common errors
func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func TripNotFound(id string) *AppError {
	return &AppError{
		Type:       TripNotFoundError,
		Message:    "Trip not found",
		Detail:     fmt.Sprintf("Trip ID: %s", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Conflict(code, message, detail string) *AppError {
	return &AppError{
		Type:       ConflictError,
		Code:       code,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusConflict,
	}
}

func TripAlreadyClosed(id string) *AppError {
	return Conflict(CodeTripAlreadyClosed, "Trip is already closed", fmt.Sprintf("Trip ID: %s", id))
}

func Unauthorized(code, message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func Forbidden(message string, details string) *AppError {
	return &AppError{
		Type:       ForbiddenError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusForbidden,
	}
}

func RateLimitExceeded(detail string) *AppError {
	return &AppError{
		Type:       RateLimitError,
		Message:    "Too many requests",
		Detail:     detail,
		HTTPStatus: http.StatusTooManyRequests,
	}
}

func NewDatabaseError(err error) *AppError {
	// Log original error but return sanitized message
	logger.GetLogger().Errorw("Database error", "error", err)
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func ExternalService(service string, err error) *AppError {
	return &AppError{
		Type:       ExternalServiceError,
		Message:    fmt.Sprintf("%s request failed", service),
		HTTPStatus: http.StatusBadGateway,
		Raw:        err,
	}
}

// FromContext maps an error caused by a passed deadline or a cancelled
// request to an AppError. It returns nil for any other error.
func FromContext(err error) *AppError {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return &AppError{
			Type:       TimeoutError,
			Message:    "Request timed out",
			HTTPStatus: http.StatusGatewayTimeout,
			Raw:        err,
		}
	case stderrors.Is(err, context.Canceled):
		return &AppError{
			Type:       CanceledError,
			Message:    "Request canceled",
			HTTPStatus: StatusClientClosedRequest,
			Raw:        err,
		}
	}
	return nil
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError, TripNotFoundError:
		return http.StatusNotFound
	case AuthError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case ConflictError:
		return http.StatusConflict
	case RateLimitError:
		return http.StatusTooManyRequests
	case ExternalServiceError:
		return http.StatusBadGateway
	case TimeoutError:
		return http.StatusGatewayTimeout
	case CanceledError:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}
