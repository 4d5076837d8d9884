package httpclient

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/fetchkit/errors"
	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/observability"
	"github.com/kbukum/fetchkit/security"
)

// Client executes Requests. It never follows redirects at the transport level;
// the engine chases them itself so every hop lands in the response history.
type Client struct {
	config   Config
	http     *http.Client
	defaults *Headers
	log      *logger.Logger
	metrics  *observability.ClientMetrics
	now      func() time.Time

	mu     sync.Mutex
	perTLS map[security.TLSConfig]*http.Client
	closed atomic.Bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics records call metrics on m.
func WithMetrics(m *observability.ClientMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTransport replaces the round tripper. Per-request TLS settings need an
// *http.Transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.http.Transport = rt
		}
	}
}

// New creates a client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.TLS != nil {
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			transport.TLSClientConfig = tlsCfg
		}
	}

	c := &Client{
		config:   cfg,
		http:     &http.Client{Transport: transport, CheckRedirect: noFollow},
		defaults: cfg.defaultHeaders(),
		log:      logger.NewNop(),
		now:      time.Now,
		perTLS:   make(map[security.TLSConfig]*http.Client),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent(cfg.Name)
	return c, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.config }

// Open returns an unconnected Response for req. No I/O happens until a field
// is first read. The caller must Close the response.
func (c *Client) Open(ctx context.Context, req *Request) *Response {
	return newResponse(c, ctx, uuid.NewString(), req)
}

// Do performs req. Redirects are followed as the request allows. Unless the
// request streams, the body is buffered and the connection released before
// Do returns. Non-2xx statuses are reported, not returned as errors.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.Construction("nil request")
	}
	if c.closed.Load() {
		return nil, errors.State("client is closed")
	}
	resp := c.Open(ctx, req)
	if err := resp.init(); err != nil {
		_ = resp.Close()
		return nil, err
	}
	return resp, nil
}

// Fetch builds a request and performs it.
func (c *Client) Fetch(ctx context.Context, method, url string, opts ...RequestOption) (*Response, error) {
	req, err := NewRequest(method, url, opts...)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Fetch(ctx, http.MethodGet, url, opts...)
}

// Head performs a HEAD request. Redirects are not followed unless allowed explicitly.
func (c *Client) Head(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Fetch(ctx, http.MethodHead, url, opts...)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Fetch(ctx, http.MethodPost, url, opts...)
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Fetch(ctx, http.MethodPut, url, opts...)
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Fetch(ctx, http.MethodPatch, url, opts...)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Fetch(ctx, http.MethodDelete, url, opts...)
}

// Options performs an OPTIONS request.
func (c *Client) Options(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Fetch(ctx, http.MethodOptions, url, opts...)
}

// IsAvailable reports whether the client accepts calls.
func (c *Client) IsAvailable(_ context.Context) bool {
	return !c.closed.Load()
}

// Close releases idle connections. Later calls fail with a STATE_ERROR.
func (c *Client) Close(_ context.Context) error {
	c.closed.Store(true)
	c.http.CloseIdleConnections()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, hc := range c.perTLS {
		hc.CloseIdleConnections()
	}
	return nil
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Client) Unwrap() *http.Client {
	return c.http
}
