// Package errors defines the application error model shared by all layers:
// sentinel errors for flow control and AppError for HTTP-facing responses.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors used with errors.Is across layers.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInternal          = errors.New("internal error")
	ErrPaymentDeclined   = errors.New("payment declined")
	ErrProcessorTimeout  = errors.New("payment processor timeout")
	ErrDuplicateFeedback = errors.New("feedback already submitted")
)

// AppError is a structured application error with an HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error for a missing resource.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Conflict creates a 409 error with a caller-supplied code.
func Conflict(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// Internal creates a 500 error wrapping the underlying cause.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// PaymentDeclined creates a 422 error for a declined charge.
func PaymentDeclined(message string) *AppError {
	return &AppError{
		Code:    "PAYMENT_DECLINED",
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrPaymentDeclined,
	}
}

// ProcessorTimeout creates a 504 error for a charge that exceeded the
// processing deadline.
func ProcessorTimeout(message string) *AppError {
	return &AppError{
		Code:    "PROCESSOR_TIMEOUT",
		Message: message,
		Status:  http.StatusGatewayTimeout,
		Err:     ErrProcessorTimeout,
	}
}

// DuplicateFeedback creates a 409 error for repeated feedback on the
// same order (and product, for product-level reviews).
func DuplicateFeedback(message string) *AppError {
	return &AppError{
		Code:    "DUPLICATE_FEEDBACK",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrDuplicateFeedback,
	}
}

// InvalidTransition creates a 409 error for an order status move the
// lifecycle does not allow.
func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    "INVALID_TRANSITION",
		Message: fmt.Sprintf("cannot transition order from %s to %s", from, to),
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// PriceMismatch creates a 409 error for a cart whose submitted prices
// disagree with the catalog.
func PriceMismatch(message string) *AppError {
	return &AppError{
		Code:    "PRICE_MISMATCH",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// Wrap annotates an error while keeping it unwrappable.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus maps an error to its HTTP status code.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicateFeedback):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrPaymentDeclined):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrProcessorTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
