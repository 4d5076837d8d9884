package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Descriptor errors (fatal, never retried)
const (
	// ErrCodeConstruction indicates an invalid request descriptor.
	ErrCodeConstruction ErrorCode = "CONSTRUCTION_ERROR"
	// ErrCodeInvalidInput indicates invalid input outside of descriptor construction.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Transport errors
const (
	// ErrCodeNetwork indicates a connect, read, write, DNS or TLS failure.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
	// ErrCodeTimeout indicates the transport deadline was exceeded.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRedirectResolution indicates a redirect with a missing or malformed Location.
	ErrCodeRedirectResolution ErrorCode = "REDIRECT_RESOLUTION_ERROR"
	// ErrCodeTooManyRedirects indicates the redirect hop limit was exceeded.
	ErrCodeTooManyRedirects ErrorCode = "TOO_MANY_REDIRECTS"
)

// Dispatch errors
const (
	// ErrCodeRejected indicates the dispatcher refused to schedule a call.
	ErrCodeRejected ErrorCode = "REJECTED"
)

// Programmer errors
const (
	// ErrCodeState indicates a field was accessed after its resource was released.
	ErrCodeState ErrorCode = "STATE_ERROR"
	// ErrCodeInternal indicates an unexpected failure such as a recovered panic.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// networkCodes are the codes surfaced to callers as network failures.
var networkCodes = map[ErrorCode]bool{
	ErrCodeNetwork:            true,
	ErrCodeTimeout:            true,
	ErrCodeRedirectResolution: true,
	ErrCodeTooManyRedirects:   true,
}

// retryableCodes is informational only: the engine itself never retries.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeNetwork:  true,
	ErrCodeTimeout:  true,
	ErrCodeRejected: true,
}

// IsRetryableCode returns true if a caller could reasonably retry the operation.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsNetworkCode returns true if the code belongs to the network error class.
func IsNetworkCode(code ErrorCode) bool {
	return networkCodes[code]
}
