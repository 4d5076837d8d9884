package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/fetchkit/errors"
	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/observability"
	"github.com/kbukum/fetchkit/resilience"
)

// Executor performs one request. Client.Do is the default.
type Executor func(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error)

// Dispatcher runs requests on background goroutines, at most Workers at a time.
type Dispatcher struct {
	config   Config
	exec     Executor
	bulkhead *resilience.Bulkhead
	limiter  *resilience.RateLimiter
	log      *logger.Logger
	metrics  *observability.ClientMetrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithMetrics records rejected calls on m.
func WithMetrics(m *observability.ClientMetrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithExecutor replaces the function that performs each request.
func WithExecutor(exec Executor) Option {
	return func(d *Dispatcher) {
		if exec != nil {
			d.exec = exec
		}
	}
}

// New creates a dispatcher that performs requests with client. A nil client
// is allowed when WithExecutor supplies the executor.
func New(client *httpclient.Client, cfg Config, opts ...Option) (*Dispatcher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		config: cfg,
		log:    logger.NewNop(),
	}
	if client != nil {
		d.exec = client.Do
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.exec == nil {
		return nil, errors.Construction("dispatcher needs a client or an executor")
	}
	d.log = d.log.WithComponent(cfg.Name)

	d.bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          cfg.Name,
		MaxConcurrent: cfg.Workers,
		MaxWait:       cfg.MaxWait,
	})
	if cfg.Rate > 0 {
		d.limiter = resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Name:  cfg.Name,
			Rate:  cfg.Rate,
			Burst: cfg.Burst,
		})
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	return d, nil
}

// Config returns the effective configuration.
func (d *Dispatcher) Config() Config { return d.config }

// IsClosed reports whether Close was called.
func (d *Dispatcher) IsClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// InFlight returns the number of calls currently holding a worker.
func (d *Dispatcher) InFlight() int { return d.bulkhead.InUse() }

// Call is a handle to one dispatched request.
type Call struct {
	cancel context.CancelFunc
	done   chan struct{}
	result Result
}

// Result returns the outcome, or Loading while the call runs.
func (c *Call) Result() Result {
	select {
	case <-c.done:
		return c.result
	default:
		return Loading()
	}
}

// Done is closed when the call has finished.
func (c *Call) Done() <-chan struct{} { return c.done }

// Wait blocks until the call finishes or ctx is done. Giving up on the wait
// does not cancel the call.
func (c *Call) Wait(ctx context.Context) (Result, error) {
	select {
	case <-c.done:
		return c.result, nil
	case <-ctx.Done():
		return Loading(), ctx.Err()
	}
}

// Cancel aborts the call. A call that already finished is unaffected.
func (c *Call) Cancel() { c.cancel() }

// Execute dispatches req and returns at once. The call stops when ctx is
// done, when Cancel is called or when the dispatcher closes.
//
// The call context lives until the outcome is settled: an Error ends it at
// once, a Success ends it when its response is released.
func (d *Dispatcher) Execute(ctx context.Context, req *httpclient.Request) *Call {
	ctx, cancel := context.WithCancel(ctx)
	call := &Call{cancel: cancel, done: make(chan struct{})}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		cancel()
		call.result = Failure(errors.State("dispatcher is closed"))
		close(call.done)
		return call
	}
	d.wg.Add(1)
	d.mu.Unlock()

	stop := context.AfterFunc(d.ctx, cancel)
	go func() {
		defer d.wg.Done()
		defer close(call.done)
		call.result = d.run(ctx, req)

		finish := func() {
			stop()
			cancel()
		}
		if resp := call.result.Response(); resp != nil {
			resp.OnRelease(finish)
			return
		}
		finish()
	}()
	return call
}

func (d *Dispatcher) run(ctx context.Context, req *httpclient.Request) (res Result) {
	ctx, span := observability.StartSpan(ctx, observability.SpanDispatch,
		trace.WithAttributes(attribute.String("fetchkit.dispatch.pool", d.config.Name)))
	defer span.End()

	if req == nil {
		return Failure(errors.Construction("nil request"))
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return d.reject(ctx, err)
		}
	}
	release, err := d.bulkhead.Acquire(ctx)
	if err != nil {
		return d.reject(ctx, err)
	}
	defer release()

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Executor panicked", map[string]interface{}{
				"error":  fmt.Sprintf("%v", r),
				"stack":  string(debug.Stack()),
				"method": req.Method(),
				"url":    req.URL(),
			})
			res = Failure(errors.Internal(fmt.Errorf("panic: %v", r)))
			observability.SetSpanError(ctx, res.Err())
		}
	}()

	start := time.Now()
	resp, err := d.exec(ctx, req)
	if err != nil {
		if _, ok := errors.AsAppError(err); !ok {
			err = errors.Internal(err)
		}
		observability.SetSpanError(ctx, err)
		d.log.Debug("Call failed", logger.MergeWithError(logger.DurationFields("dispatch", time.Since(start)), err))
		return Failure(err)
	}
	if resp == nil {
		return Failure(errors.Internal(fmt.Errorf("executor returned no response")))
	}
	return Success(resp)
}

func (d *Dispatcher) reject(ctx context.Context, cause error) Result {
	d.metrics.Rejected(ctx, d.config.Name)
	d.log.Warn("Call rejected", logger.ErrorFields("dispatch", cause))
	err := errors.Rejected(d.config.Name, cause)
	observability.SetSpanError(ctx, err)
	return Failure(err)
}

// Close cancels every running call and waits for them to finish or for ctx
// to end. Later Execute calls fail with a STATE_ERROR.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
