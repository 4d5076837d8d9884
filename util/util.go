package util

import (
	"net/textproto"
	"strings"
	"unicode"
)

// SensitiveHeaders are masked by MaskHeaders.
var SensitiveHeaders = []string{
	"Authorization",
	"Proxy-Authorization",
	"Cookie",
	"Set-Cookie",
	"X-API-Key",
}

// SanitizeString trims whitespace and removes control characters from s.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// MaskSecret hides all but the first visiblePrefix bytes of s.
// If s is not longer than visiblePrefix it is fully masked.
func MaskSecret(s string, visiblePrefix int) string {
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}

// MaskHeaders returns a copy of headers with sensitive values masked. The
// scheme word of an Authorization value ("Basic", "Bearer") stays visible.
func MaskHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for name, value := range headers {
		if !isSensitive(name) {
			out[name] = value
			continue
		}
		prefix := 0
		if i := strings.IndexByte(value, ' '); i > 0 {
			prefix = i + 1
		}
		out[name] = MaskSecret(value, prefix)
	}
	return out
}

func isSensitive(name string) bool {
	canonical := textproto.CanonicalMIMEHeaderKey(name)
	for _, s := range SensitiveHeaders {
		if textproto.CanonicalMIMEHeaderKey(s) == canonical {
			return true
		}
	}
	return false
}

// Coalesce returns the first non-zero value, or the zero value if all are zero.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
