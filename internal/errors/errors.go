package errors

import "fmt"

// Error codes
const (
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeStorageFailure    = "STORAGE_FAILURE"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeSyncFailure       = "SYNC_FAILURE"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "STORAGE_FAILURE")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is supports errors.Is matching by code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewStorageFailure wraps a durable-store error. Local reads and writes that
// hit this are surfaced to the caller as-is, never retried internally.
func NewStorageFailure(op string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeStorageFailure,
		Message: fmt.Sprintf("storage operation failed: %s", op),
		Status:  500,
		Err:     err,
	}
}

// NewInvalidTransition signals a session operation invoked in a state where it
// is not valid. The session state is left unchanged.
func NewInvalidTransition(op, state string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("%s is not valid in state %s", op, state),
		Status:  409,
	}
}

// NewSyncFailure records a failed remote delivery. Never surfaced to the UI
// directly; aggregated via the queue's pending count.
func NewSyncFailure(kind string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeSyncFailure,
		Message: fmt.Sprintf("sync failed for %s operation", kind),
		Status:  502,
		Err:     err,
	}
}
