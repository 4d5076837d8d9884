package httpclient

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/kbukum/fetchkit/errors"
	"github.com/kbukum/fetchkit/observability"
	"github.com/kbukum/fetchkit/security"
)

var errBudgetExceeded = stderrors.New("timeout budget exceeded")

// budget enforces one timeout per phase: it bounds connecting and receiving
// headers, then each blocked body read. Time spent between reads is not
// counted.
type budget struct {
	d      time.Duration
	timer  *time.Timer
	cancel context.CancelCauseFunc
}

func newBudget(parent context.Context, d time.Duration) (context.Context, *budget) {
	ctx, cancel := context.WithCancelCause(parent)
	b := &budget{d: d, cancel: cancel}
	if d > 0 {
		b.timer = time.AfterFunc(d, func() { cancel(errBudgetExceeded) })
	}
	return ctx, b
}

// arm restarts the timeout for one blocking phase.
func (b *budget) arm() {
	if b.timer != nil {
		b.timer.Reset(b.d)
	}
}

// pause holds the timeout while the caller is not waiting on the transport.
func (b *budget) pause() {
	if b.timer != nil {
		b.timer.Stop()
	}
}

func (b *budget) stop() {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.cancel(context.Canceled)
}

// budgetBody arms the budget for the duration of each read and stops it on close.
type budgetBody struct {
	io.ReadCloser
	ctx    context.Context
	budget *budget
}

func (b *budgetBody) Read(p []byte) (int, error) {
	b.budget.arm()
	n, err := b.ReadCloser.Read(p)
	b.budget.pause()
	if err != nil && err != io.EOF {
		return n, transportError(b.ctx, "read body", err)
	}
	return n, err
}

func (b *budgetBody) Close() error {
	err := b.ReadCloser.Close()
	b.budget.stop()
	return err
}

// transportError classifies a transport failure as TIMEOUT or NETWORK_ERROR.
func transportError(ctx context.Context, op string, err error) error {
	if errors.IsAppError(err) {
		return err
	}
	if stderrors.Is(context.Cause(ctx), errBudgetExceeded) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout(op, err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Timeout(op, err)
	}
	return errors.Network(op, err)
}

// timeoutFor returns the budget for req.
func (c *Client) timeoutFor(req *Request) time.Duration {
	if req.timeoutSet {
		return time.Duration(req.TimeoutMillis()) * time.Millisecond
	}
	return c.config.Timeout
}

func noFollow(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// httpClientFor returns the transport client for the given TLS settings,
// building and caching one per distinct setting. Settings are compared by
// value, so wrappers around the same *tls.Config share a transport.
func (c *Client) httpClientFor(tlsCfg *security.TLSConfig) (*http.Client, error) {
	if tlsCfg == nil {
		return c.http, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if hc, ok := c.perTLS[*tlsCfg]; ok {
		return hc, nil
	}

	base, ok := c.http.Transport.(*http.Transport)
	if !ok {
		return nil, errors.Construction("per-request tls needs an *http.Transport")
	}
	built, err := tlsCfg.Build()
	if err != nil {
		return nil, errors.Construction("build tls config").WithCause(err)
	}
	transport := base.Clone()
	transport.TLSClientConfig = built

	hc := &http.Client{Transport: transport, CheckRedirect: noFollow}
	c.perTLS[*tlsCfg] = hc
	return hc, nil
}

// exchange sends one hop of req and returns the transport response with its
// body bound to the timeout budget.
func (c *Client) exchange(ctx context.Context, req *Request) (*http.Response, error) {
	headers, body, err := req.prepare(c.defaults)
	if err != nil {
		return nil, err
	}
	hc, err := c.httpClientFor(req.TLS())
	if err != nil {
		return nil, err
	}

	var payload io.Reader
	if body != nil {
		payload = bytes.NewReader(body)
	}

	bctx, b := newBudget(ctx, c.timeoutFor(req))
	httpReq, err := http.NewRequestWithContext(bctx, req.Method(), req.FullURL(), payload)
	if err != nil {
		b.stop()
		return nil, errors.Construction("build transport request").WithCause(err)
	}
	httpReq.Header = headers.ToHTTP()
	if !headers.Has(HeaderUserAgent) {
		// An empty value stops the transport from adding its own agent.
		httpReq.Header[HeaderUserAgent] = []string{""}
	}
	observability.InjectHeaders(ctx, httpReq.Header.Set)

	conn, err := hc.Do(httpReq)
	if err != nil {
		b.stop()
		return nil, transportError(bctx, "connect", err)
	}
	b.pause()
	conn.Body = &budgetBody{ReadCloser: conn.Body, ctx: bctx, budget: b}
	return conn, nil
}
