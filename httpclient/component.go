package httpclient

import (
	"context"
	"fmt"

	"github.com/kbukum/fetchkit/component"
)

// Component wraps a Client with lifecycle management.
type Component struct {
	client *Client
	config Config
	opts   []Option
}

// compile-time assertions
var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a new HTTP client component.
// The client is created lazily in Start().
func NewComponent(cfg Config, opts ...Option) *Component {
	return &Component{config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	name := c.config.Name
	if name == "" {
		name = defaultName
	}
	return name
}

// Start initializes the HTTP client.
func (c *Component) Start(_ context.Context) error {
	cl, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.client = cl
	return nil
}

// Stop closes the HTTP client and releases resources.
func (c *Component) Stop(ctx context.Context) error {
	if c.client != nil {
		return c.client.Close(ctx)
	}
	return nil
}

// Health returns the client health status.
func (c *Component) Health(ctx context.Context) component.Health {
	status := component.StatusHealthy
	message := ""
	if c.client == nil || !c.client.IsAvailable(ctx) {
		status = component.StatusUnhealthy
		message = "client not available"
	}
	return component.Health{
		Name:    c.Name(),
		Status:  status,
		Message: message,
	}
}

// Describe returns component description for the startup summary.
func (c *Component) Describe() component.Description {
	cfg := c.config
	cfg.ApplyDefaults()
	return component.Description{
		Name:    c.Name(),
		Type:    "httpclient",
		Details: fmt.Sprintf("timeout=%s max_redirects=%d tls=%t", cfg.Timeout, cfg.MaxRedirects, cfg.TLS.IsEnabled()),
	}
}

// Client returns the underlying client. Must be called after Start().
func (c *Component) Client() *Client {
	return c.client
}
