package cli

import (
	"fmt"

	"github.com/kbukum/fetchkit/config"
	"github.com/kbukum/fetchkit/dispatch"
	"github.com/kbukum/fetchkit/httpclient"
)

// Config is the CLI configuration, loaded from fetchkit.yaml, .env and
// FETCHKIT-style environment variables.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	HTTP     httpclient.Config `yaml:"http" mapstructure:"http"`
	Dispatch dispatch.Config   `yaml:"dispatch" mapstructure:"dispatch"`
}

// ApplyDefaults logs warnings and above to stderr unless configured
// otherwise, so stdout carries only response output.
func (c *Config) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
	c.ServiceConfig.ApplyDefaults()
	c.HTTP.ApplyDefaults()
	c.Dispatch.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("config.http: %w", err)
	}
	if err := c.Dispatch.Validate(); err != nil {
		return fmt.Errorf("config.dispatch: %w", err)
	}
	return nil
}
