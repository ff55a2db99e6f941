// Package errors provides custom error types for the Monetra API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "VALIDATION_ERROR", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User and credential lifecycle errors.
var (
	ErrUserNotFound          = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail        = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusBadRequest}
	ErrInvalidOrExpiredToken = &AppError{Code: "INVALID_OR_EXPIRED_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusBadRequest}
	ErrInvalidOrExpiredOTP   = &AppError{Code: "INVALID_OR_EXPIRED_OTP", Message: "Invalid or expired code", StatusCode: http.StatusBadRequest}
	ErrSameEmail             = &AppError{Code: "SAME_EMAIL", Message: "New email must be different from the current email", StatusCode: http.StatusBadRequest}
	ErrEmailTaken            = &AppError{Code: "EMAIL_TAKEN", Message: "This email is already in use", StatusCode: http.StatusBadRequest}
	ErrEmailDelivery         = &AppError{Code: "EMAIL_DELIVERY", Message: "Failed to send email", StatusCode: http.StatusInternalServerError}
	ErrSessionNotFound       = &AppError{Code: "SESSION_NOT_FOUND", Message: "Session not found", StatusCode: http.StatusNotFound}
)

// Category errors.
var (
	ErrCategoryNotFound         = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategoryName    = &AppError{Code: "DUPLICATE_CATEGORY_NAME", Message: "A category with this name already exists", StatusCode: http.StatusBadRequest}
	ErrDefaultCategoryProtected = &AppError{Code: "DEFAULT_CATEGORY_PROTECTED", Message: "Default categories cannot be modified or deleted", StatusCode: http.StatusBadRequest}
	ErrAlreadyHasCategories     = &AppError{Code: "ALREADY_HAS_CATEGORIES", Message: "User already has categories", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound  = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrCategoryTypeMismatch = &AppError{Code: "CATEGORY_TYPE_MISMATCH", Message: "Category does not exist or its type does not match the transaction type", StatusCode: http.StatusBadRequest}
)
