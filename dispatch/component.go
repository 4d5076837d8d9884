package dispatch

import (
	"context"
	"fmt"

	"github.com/kbukum/fetchkit/component"
	"github.com/kbukum/fetchkit/errors"
	"github.com/kbukum/fetchkit/httpclient"
)

// Component wraps a Dispatcher with lifecycle management. It must start after
// the client component it draws its client from.
type Component struct {
	dispatcher *Dispatcher
	clients    *httpclient.Component
	config     Config
	opts       []Option
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a dispatcher component on top of clients.
func NewComponent(cfg Config, clients *httpclient.Component, opts ...Option) *Component {
	return &Component{clients: clients, config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	if c.config.Name == "" {
		return defaultName
	}
	return c.config.Name
}

// Start creates the dispatcher.
func (c *Component) Start(_ context.Context) error {
	if c.clients == nil || c.clients.Client() == nil {
		return errors.State("http client component is not started")
	}
	d, err := New(c.clients.Client(), c.config, c.opts...)
	if err != nil {
		return err
	}
	c.dispatcher = d
	return nil
}

// Stop closes the dispatcher, waiting for running calls until ctx ends.
func (c *Component) Stop(ctx context.Context) error {
	if c.dispatcher != nil {
		return c.dispatcher.Close(ctx)
	}
	return nil
}

// Health reports unhealthy until started and degraded while every worker is busy.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	switch {
	case c.dispatcher == nil || c.dispatcher.IsClosed():
		h.Status = component.StatusUnhealthy
		h.Message = "dispatcher not running"
	case c.dispatcher.InFlight() >= c.dispatcher.config.Workers:
		h.Status = component.StatusDegraded
		h.Message = "all workers busy"
	}
	return h
}

// Describe returns component description for the startup summary.
func (c *Component) Describe() component.Description {
	cfg := c.config
	cfg.ApplyDefaults()
	return component.Description{
		Name:    c.Name(),
		Type:    "dispatch",
		Details: fmt.Sprintf("workers=%d max_wait=%s rate=%g", cfg.Workers, cfg.MaxWait, cfg.Rate),
	}
}

// Dispatcher returns the underlying dispatcher. Must be called after Start().
func (c *Component) Dispatcher() *Dispatcher {
	return c.dispatcher
}
