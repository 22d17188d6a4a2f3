// Package errors defines the typed failures the usecases return. The HTTP
// error handler renders any AppError with its own status and code.
package errors

import (
	"net/http"

	"ventas/internal/errors"
)

// AppError is a failure with a stable wire representation.
type AppError interface {
	error
	HTTPCode() int
	ErrorCode() string // Stable code, e.g. "INVALID_QUANTITY"
	Message() string   // Safe to show to the caller
	Details() string   // Optional, dropped for 401, 403 and 5xx
}

// BaseError is the AppError used for every predefined error below.
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
	parent    *BaseError
}

func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage annotates e for logs. The response still shows e's message.
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

func (e *BaseError) Message() string {
	return e.message
}

func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information.
// The copy still matches the original under errors.Is.
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
		parent:    e,
	}
}

// Unwrap links a WithDetails copy back to its predefined error.
func (e *BaseError) Unwrap() error {
	if e.parent == nil {
		return nil
	}

	return e.parent
}

const refreshTokenRejectedMessage = "Invalid or expired refresh token"

// Predefined domain errors. Codes are part of the API contract.
var (
	// Accounts
	ErrUserNotFound           = NewBaseError(http.StatusNotFound, "USER_NOT_FOUND", "User not found", "")
	ErrEmailAlreadyRegistered = NewBaseError(http.StatusConflict, "EMAIL_ALREADY_REGISTERED", "This email is already registered", "")
	ErrUserCreationFailed     = NewBaseError(http.StatusInternalServerError, "USER_CREATION_FAILED", "Failed to create user", "")
	ErrPasswordHashFailed     = NewBaseError(http.StatusInternalServerError, "PASSWORD_HASH_FAILED", "Password processing failed", "")
	ErrPasswordStrength       = NewBaseError(http.StatusBadRequest, "PASSWORD_STRENGTH", "Password does not meet the strength requirements", "")

	// Credentials and tokens. ErrCompromisedSession is indistinguishable from
	// ErrInvalidRefreshToken on the wire; only errors.Is tells them apart.
	ErrInvalidCredentials  = NewBaseError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", "")
	ErrInvalidRefreshToken = NewBaseError(http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", refreshTokenRejectedMessage, "")
	ErrCompromisedSession  = NewBaseError(http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", refreshTokenRejectedMessage, "")
	ErrTokenExpired        = NewBaseError(http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired", "")
	ErrTokenInvalid        = NewBaseError(http.StatusUnauthorized, "TOKEN_INVALID", "Invalid token", "")
	ErrSessionNotFound     = NewBaseError(http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found", "")

	// Requests
	ErrValidationFailed     = NewBaseError(http.StatusBadRequest, "VALIDATION_FAILED", "Input validation failed", "")
	ErrInvalidQuantity      = NewBaseError(http.StatusBadRequest, "INVALID_QUANTITY", "Quantity must be a positive integer", "")
	ErrInvalidPaymentStatus = NewBaseError(http.StatusBadRequest, "INVALID_PAYMENT_STATUS", "Unknown payment status", "")
	ErrForbidden            = NewBaseError(http.StatusForbidden, "FORBIDDEN", "Access denied", "")
	ErrConflict             = NewBaseError(http.StatusConflict, "CONFLICT", "Resource conflict", "")

	// Catalog, orders and payments
	ErrProductNotFound = NewBaseError(http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", "")
	ErrOrderNotFound   = NewBaseError(http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", "")
	ErrPaymentNotFound = NewBaseError(http.StatusNotFound, "PAYMENT_NOT_FOUND", "Payment not found", "")

	// Provider callbacks
	ErrInvalidWebhookSignature   = NewBaseError(http.StatusUnauthorized, "INVALID_SIGNATURE", "Invalid webhook signature", "")
	ErrWebhookVerificationFailed = NewBaseError(http.StatusForbidden, "WEBHOOK_VERIFICATION_FAILED", "Webhook verification failed", "")

	// Infrastructure
	ErrTransactionFailed = NewBaseError(http.StatusInternalServerError, "TRANSACTION_FAILED", "Database transaction failed", "")
	ErrInternalError     = NewBaseError(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", "")
)

// DatabaseExecuteError wraps a driver failure. The driver error stays in the
// chain for logs but never reaches the response.
type DatabaseExecuteError struct {
	err     error
	details string
}

func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{err: err, details: details}
}

func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

func (e *DatabaseExecuteError) Message() string {
	return "Database execution failed"
}

func (e *DatabaseExecuteError) Details() string {
	return e.details
}
