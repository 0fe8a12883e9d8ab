// Package observability provides OpenTelemetry tracing and metrics helpers
// used by the DI registry.
//
// Tracing:
//
//	exp, _ := observability.NewStdoutExporter(os.Stderr)
//	tp, err := observability.InitTracer(ctx, observability.TracerConfig{
//		ServiceName: "wirekit",
//		SampleRate:  1.0,
//		Logger:      log,
//	}, exp)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	metrics, err := observability.NewRegistryMetrics(mp.Meter(observability.InstrumentationName))
//	metrics.RecordConstruct(ctx, "db", elapsed)
package observability
