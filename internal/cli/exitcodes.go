package cli

import (
	stderrors "errors"

	"github.com/kbukum/fetchkit/errors"
)

// Exit codes for the fetchkit CLI.
const (
	// ExitSuccess indicates the command completed.
	ExitSuccess = 0

	// ExitFailure indicates a failure without a more specific code.
	ExitFailure = 1

	// ExitHTTPError indicates a 4xx or 5xx status with --fail set.
	ExitHTTPError = 22

	// ExitRequestError indicates a request that could not be built.
	ExitRequestError = 2

	// ExitConfigError indicates a configuration error.
	ExitConfigError = 3

	// ExitNetworkError indicates a connection, timeout or redirect error.
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage.
	ExitUsageError = 64
)

// exitError carries the exit code a command wants.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if stderrors.As(err, &ee) {
		return ee.code
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return ExitFailure
	}
	switch appErr.Code {
	case errors.ErrCodeConstruction, errors.ErrCodeInvalidInput:
		return ExitRequestError
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout,
		errors.ErrCodeRedirectResolution, errors.ErrCodeTooManyRedirects:
		return ExitNetworkError
	default:
		return ExitFailure
	}
}
