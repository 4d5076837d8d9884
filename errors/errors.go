package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type returned by fetchkit.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if a caller could retry the operation.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Constructors ---

// Construction creates an error for an invalid request descriptor.
func Construction(reason string) *AppError {
	return &AppError{Code: ErrCodeConstruction, Message: reason}
}

// InvalidInput creates an error for an invalid argument.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("invalid input: %s", reason),
		Details: details,
	}
}

// Network creates an error for a transport failure during the given operation.
func Network(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeNetwork, Message: fmt.Sprintf("%s failed", operation),
		Retryable: true, Cause: cause,
		Details: map[string]any{"operation": operation},
	}
}

// Timeout creates an error for an operation that exceeded its deadline.
func Timeout(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s timed out", operation),
		Retryable: true, Cause: cause,
		Details: map[string]any{"operation": operation},
	}
}

// RedirectResolution creates an error for a redirect that cannot be followed.
func RedirectResolution(status int, location string, cause error) *AppError {
	msg := fmt.Sprintf("cannot resolve redirect for status %d", status)
	if location == "" {
		msg = fmt.Sprintf("redirect status %d without Location header", status)
	}
	return &AppError{
		Code: ErrCodeRedirectResolution, Message: msg, Cause: cause,
		Details: map[string]any{"status": status, "location": location},
	}
}

// TooManyRedirects creates an error for a redirect chain longer than limit.
func TooManyRedirects(limit int) *AppError {
	return &AppError{
		Code: ErrCodeTooManyRedirects, Message: fmt.Sprintf("stopped after %d redirects", limit),
		Details: map[string]any{"limit": limit},
	}
}

// State creates an error for a field accessed in the wrong lifecycle state.
func State(reason string) *AppError {
	return &AppError{Code: ErrCodeState, Message: reason}
}

// Released is the StateError returned when a consumed stream is read again.
func Released(field string) *AppError {
	return State(fmt.Sprintf("%s already released", field)).WithDetail("field", field)
}

// Rejected creates an error for a call the dispatcher pool could not take.
func Rejected(pool string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeRejected, Message: fmt.Sprintf("call rejected by %s", pool),
		Retryable: true, Cause: cause,
		Details: map[string]any{"pool": pool},
	}
}

// Internal creates an error for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "an unexpected error occurred", Cause: cause,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsNetwork reports whether err belongs to the network error class.
func IsNetwork(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && IsNetworkCode(appErr.Code)
}

// IsState reports whether err is a STATE_ERROR.
func IsState(err error) bool { return IsCode(err, ErrCodeState) }

// IsConstruction reports whether err is a CONSTRUCTION_ERROR.
func IsConstruction(err error) bool { return IsCode(err, ErrCodeConstruction) }
