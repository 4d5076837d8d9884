package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeState, "released")
	if err.Code != ErrCodeState {
		t.Errorf("expected code %s, got %s", ErrCodeState, err.Code)
	}
	if err.Message != "released" {
		t.Errorf("expected message 'released', got %q", err.Message)
	}
	if err.Retryable {
		t.Error("STATE_ERROR should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out")
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestAppError_Error_WithCause(t *testing.T) {
	err := Network("connect", io.ErrUnexpectedEOF)
	msg := err.Error()
	if !strings.Contains(msg, "NETWORK_ERROR") {
		t.Errorf("expected code in message, got %q", msg)
	}
	if !strings.Contains(msg, "unexpected EOF") {
		t.Errorf("expected cause in message, got %q", msg)
	}
	if !stderrors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestAppError_Error_NoCause(t *testing.T) {
	err := Construction("bad scheme")
	if got := err.Error(); got != "CONSTRUCTION_ERROR: bad scheme" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := State("closed").WithDetails(map[string]any{"a": 1}).WithDetail("b", 2)
	if err.Details["a"] != 1 || err.Details["b"] != 2 {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestRedirectResolution_MissingLocation(t *testing.T) {
	err := RedirectResolution(302, "", nil)
	if !strings.Contains(err.Message, "without Location") {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Details["status"] != 302 {
		t.Errorf("expected status detail 302, got %v", err.Details["status"])
	}
}

func TestReleased(t *testing.T) {
	err := Released("raw")
	if !IsState(err) {
		t.Error("expected STATE_ERROR")
	}
	if !strings.Contains(err.Error(), "already released") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestIsNetwork(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", Network("read", nil), true},
		{"timeout", Timeout("connect", nil), true},
		{"redirect resolution", RedirectResolution(301, "::", nil), true},
		{"too many redirects", TooManyRedirects(10), true},
		{"state", State("x"), false},
		{"rejected", Rejected("dispatch", nil), false},
		{"construction", Construction("x"), false},
		{"plain", stderrors.New("x"), false},
		{"wrapped", fmt.Errorf("outer: %w", Network("write", nil)), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNetwork(tc.err); got != tc.want {
				t.Errorf("IsNetwork() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("ctx: %w", Construction("bad"))
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AppError")
	}
	if appErr.Code != ErrCodeConstruction {
		t.Errorf("expected CONSTRUCTION_ERROR, got %s", appErr.Code)
	}
	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("plain error should not convert")
	}
	if !IsConstruction(wrapped) {
		t.Error("expected IsConstruction")
	}
}

func TestInternal(t *testing.T) {
	cause := stderrors.New("boom")
	err := Internal(cause)
	if err.Code != ErrCodeInternal || err.Cause != cause {
		t.Errorf("unexpected internal error %+v", err)
	}
}

func TestRejected(t *testing.T) {
	err := Rejected("crawler", io.ErrClosedPipe)
	if err.Code != ErrCodeRejected || !err.Retryable {
		t.Errorf("unexpected rejected error %+v", err)
	}
	if err.Details["pool"] != "crawler" {
		t.Errorf("expected pool detail, got %v", err.Details)
	}
	if !stderrors.Is(err, io.ErrClosedPipe) {
		t.Error("expected cause to unwrap")
	}
}
