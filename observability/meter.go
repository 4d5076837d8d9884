package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/version"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) *MeterConfig {
	return &MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.Version,
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The caller shuts the provider down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric instrument names.
const (
	MetricRequestTotal    = "fetchkit.request.total"
	MetricRequestDuration = "fetchkit.request.duration"
	MetricRequestActive   = "fetchkit.request.active"
	MetricRedirectTotal   = "fetchkit.redirect.total"
	MetricErrorTotal      = "fetchkit.error.total"
	MetricRejectedTotal   = "fetchkit.dispatch.rejected"
)

// ClientMetrics holds the instruments recorded by the client and dispatcher.
// A nil *ClientMetrics records nothing.
type ClientMetrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
	redirectTotal   metric.Int64Counter
	errorTotal      metric.Int64Counter
	rejectedTotal   metric.Int64Counter
}

// NewClientMetrics creates the client instruments on the given meter.
func NewClientMetrics(meter metric.Meter) (*ClientMetrics, error) {
	requestTotal, err := meter.Int64Counter(MetricRequestTotal,
		metric.WithDescription("Completed HTTP exchanges, one per hop"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRequestTotal, err)
	}

	requestDuration, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Duration of a call including redirects"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRequestDuration, err)
	}

	requestActive, err := meter.Int64UpDownCounter(MetricRequestActive,
		metric.WithDescription("Calls currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricRequestActive, err)
	}

	redirectTotal, err := meter.Int64Counter(MetricRedirectTotal,
		metric.WithDescription("Redirect hops followed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRedirectTotal, err)
	}

	errorTotal, err := meter.Int64Counter(MetricErrorTotal,
		metric.WithDescription("Failed calls by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrorTotal, err)
	}

	rejectedTotal, err := meter.Int64Counter(MetricRejectedTotal,
		metric.WithDescription("Calls rejected by the dispatcher pool"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRejectedTotal, err)
	}

	return &ClientMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestActive:   requestActive,
		redirectTotal:   redirectTotal,
		errorTotal:      errorTotal,
		rejectedTotal:   rejectedTotal,
	}, nil
}

// CallStarted increments the in-flight count.
func (m *ClientMetrics) CallStarted(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

// CallFinished decrements the in-flight count and records the call duration.
func (m *ClientMetrics) CallFinished(ctx context.Context, method string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("method", method))
	m.requestActive.Add(ctx, -1, attrs)
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
}

// Exchange records one completed request/response exchange.
func (m *ClientMetrics) Exchange(ctx context.Context, method string, status int) {
	if m == nil {
		return
	}
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status", strconv.Itoa(status)),
	))
}

// Redirect records one followed redirect hop.
func (m *ClientMetrics) Redirect(ctx context.Context, status int) {
	if m == nil {
		return
	}
	m.redirectTotal.Add(ctx, 1, metric.WithAttributes(attribute.Int("status", status)))
}

// Error records a failed call by error code and component.
func (m *ClientMetrics) Error(ctx context.Context, code, component string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}

// Rejected records a call the dispatcher pool refused.
func (m *ClientMetrics) Rejected(ctx context.Context, pool string) {
	if m == nil {
		return
	}
	m.rejectedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("pool", pool)))
}
