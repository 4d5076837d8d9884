package dispatch

import (
	"fmt"

	"github.com/kbukum/fetchkit/httpclient"
)

// State is the variant of a Result.
type State int

const (
	// StateLoading means the call has not finished.
	StateLoading State = iota
	// StateSuccess means the call produced a response.
	StateSuccess
	// StateError means the call failed.
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of a dispatched call. The zero value is Loading.
type Result struct {
	state State
	resp  *httpclient.Response
	err   error
}

// Loading returns the result of a call that has not finished.
func Loading() Result { return Result{state: StateLoading} }

// Success returns the result of a call that produced resp. Non-2xx statuses
// are successes; the status is the caller's to inspect.
func Success(resp *httpclient.Response) Result {
	return Result{state: StateSuccess, resp: resp}
}

// Failure returns the result of a call that failed with err.
func Failure(err error) Result {
	return Result{state: StateError, err: err}
}

// State returns the variant.
func (r Result) State() State { return r.state }

// Response returns the response of a Success, or nil.
func (r Result) Response() *httpclient.Response { return r.resp }

// Err returns the cause of a Failure, or nil.
func (r Result) Err() error { return r.err }

// IsLoading reports whether the call is still running.
func (r Result) IsLoading() bool { return r.state == StateLoading }

// IsSuccess reports whether the call produced a response.
func (r Result) IsSuccess() bool { return r.state == StateSuccess }

// IsError reports whether the call failed.
func (r Result) IsError() bool { return r.state == StateError }

// String renders the variant with its payload.
func (r Result) String() string {
	switch r.state {
	case StateSuccess:
		return fmt.Sprintf("Success(%s)", r.resp)
	case StateError:
		return fmt.Sprintf("Error(%v)", r.err)
	default:
		return "Loading"
	}
}
