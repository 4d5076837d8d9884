// Package observability wires OpenTelemetry tracing and metrics into the
// fetchkit client.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
// Client metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-service"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewClientMetrics(observability.Meter("my-service"))
//	client := httpclient.New(cfg, httpclient.WithMetrics(metrics))
//
// Without InitTracer the global no-op provider is used and spans cost nothing.
package observability
