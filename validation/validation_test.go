package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/fetchkit/errors"
)

type sample struct {
	Method     string  `validate:"required,token"`
	URL        string  `validate:"required,httpurl"`
	Timeout    float64 `validate:"gte=0"`
	MaxHops    int     `mapstructure:"max_hops" validate:"gte=0,lte=50"`
	unexported string
}

func TestValidate_Valid(t *testing.T) {
	s := sample{Method: "PATCH", URL: "https://example.com/a", Timeout: 1.5, MaxHops: 10}
	if err := Validate(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	s := sample{Method: "BAD VERB", URL: "ftp://example.com", Timeout: -1, MaxHops: 99}
	err := Validate(s)
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("expected field errors in details, got %T", appErr.Details["fields"])
	}
	if len(fields) != 4 {
		t.Errorf("expected 4 field errors, got %d: %v", len(fields), fields)
	}
	for _, want := range []string{"method: must be a valid token", "url: must be an http or https URL", "timeout:", "max_hops:"} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("expected message to contain %q, got %q", want, appErr.Message)
		}
	}
}

func TestValidate_Required(t *testing.T) {
	err := Validate(sample{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "method: is required") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestIsHTTPURL(t *testing.T) {
	tests := map[string]bool{
		"http://a":          true,
		"HTTPS://a.b/c?d=e": true,
		"ftp://a":           false,
		"/relative":         false,
		"http://":           false,
		"::bad":             false,
	}
	for in, want := range tests {
		if got := IsHTTPURL(in); got != want {
			t.Errorf("IsHTTPURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsToken(t *testing.T) {
	for _, ok := range []string{"GET", "PROPFIND", "X-Custom_Header", "a.b~c"} {
		if !IsToken(ok) {
			t.Errorf("expected %q to be a token", ok)
		}
	}
	for _, bad := range []string{"", "GET POST", "a:b", "naïve", "a\tb"} {
		if IsToken(bad) {
			t.Errorf("expected %q not to be a token", bad)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("MaxRedirects"); got != "max_redirects" {
		t.Errorf("got %q", got)
	}
}
