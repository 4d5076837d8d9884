package httpclient

import (
	"sort"
	"time"

	"github.com/kbukum/fetchkit/security"
	"github.com/kbukum/fetchkit/validation"
)

const (
	defaultName    = "http"
	defaultTimeout = 30 * time.Second
)

// Config configures the HTTP client.
type Config struct {
	// Name identifies the client in logs and component listings. Defaults to "http".
	Name string `yaml:"name" mapstructure:"name"`

	// Timeout is the connect and read budget for requests that do not set
	// their own. Zero means 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// MaxRedirects caps the redirect hops of one call. Defaults to 10.
	MaxRedirects int `yaml:"max_redirects" mapstructure:"max_redirects" validate:"gte=0,lte=100"`

	// Headers are extra defaults. Request headers and payload defaults win over them.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// UserAgent replaces the default fetchkit/<version> agent.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// TLS configures TLS settings for the HTTP transport.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxRedirects == 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// defaultHeaders merges the configured headers over the package defaults.
func (c *Config) defaultHeaders() *Headers {
	names := make([]string, 0, len(c.Headers))
	for k := range c.Headers {
		names = append(names, k)
	}
	sort.Strings(names)

	h := &Headers{}
	for _, k := range names {
		h.Set(k, c.Headers[k])
	}
	if c.UserAgent != "" {
		h.Set(HeaderUserAgent, c.UserAgent)
	}
	h.Merge(DefaultHeaders())
	return h
}
