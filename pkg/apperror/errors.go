package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string            `json:"error_code"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
	HTTPStatus int               `json:"-"`
	Err        error             `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Vendor Applications (APP) ----

// Validation returns an APP_001 error. fields may be nil.
func Validation(message string, fields map[string]string) *AppError {
	e := New("APP_001", message, http.StatusBadRequest)
	e.Fields = fields
	return e
}

// ErrDuplicateEmail is returned when an application already exists for an email.
func ErrDuplicateEmail() *AppError {
	return New("APP_002", "An application with this email already exists", http.StatusBadRequest)
}

// ErrVendorExists is the provisioning-time variant of a duplicate email.
func ErrVendorExists(err error) *AppError {
	return Wrap("APP_002", "A vendor account with this email already exists", http.StatusConflict, err)
}

func ErrNotFound(entity string) *AppError {
	return New("APP_003", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrAlreadyReviewed() *AppError {
	return New("APP_004", "Application has already been reviewed", http.StatusConflict)
}

func ErrReviewInProgress() *AppError {
	return New("APP_005", "Application is being reviewed by another admin", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_002", "Insufficient permissions", http.StatusForbidden)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAccountInactive() *AppError {
	return New("AUTH_004", "Account is not active", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// ErrPersistence wraps a record store failure.
func ErrPersistence(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_002 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_002", "Internal server error", http.StatusInternalServerError, err)
}
