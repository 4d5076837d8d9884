// Package validation validates configuration and request descriptor structs
// with go-playground/validator struct tags.
//
//	type Config struct {
//	    Timeout time.Duration `validate:"gte=0"`
//	    BaseURL string        `validate:"omitempty,httpurl"`
//	}
//	err := validation.Validate(cfg)
//
// Besides the library's built-in tags, two fetchkit-specific tags are
// registered: "httpurl" (absolute URL with an http or https scheme and a
// host) and "token" (an RFC 7230 token such as an HTTP method or header name).
package validation
