package dispatch

import (
	"time"

	"github.com/kbukum/fetchkit/validation"
)

const (
	defaultName    = "dispatch"
	defaultWorkers = 8
)

// Config configures a Dispatcher.
type Config struct {
	// Name identifies the pool in logs, metrics and component listings.
	Name string `yaml:"name" mapstructure:"name"`

	// Workers caps the calls running at once. Defaults to 8.
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=0,lte=1024"`

	// MaxWait is how long a call waits for a free worker before it is
	// rejected. Zero rejects at once when every worker is busy.
	MaxWait time.Duration `yaml:"max_wait" mapstructure:"max_wait" validate:"gte=0"`

	// Rate paces call starts in calls per second. Zero means unlimited.
	Rate float64 `yaml:"rate" mapstructure:"rate" validate:"gte=0"`

	// Burst is the number of calls that may start at once under Rate.
	Burst int `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.Workers == 0 {
		c.Workers = defaultWorkers
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
