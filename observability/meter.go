package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// RegistryMetrics holds the metric instruments recorded by a DI registry.
type RegistryMetrics struct {
	resolveTotal      metric.Int64Counter
	constructTotal    metric.Int64Counter
	constructDuration metric.Float64Histogram
	errorTotal        metric.Int64Counter
}

// NewRegistryMetrics creates registry instruments on the given meter.
func NewRegistryMetrics(meter metric.Meter) (*RegistryMetrics, error) {
	resolveTotal, err := meter.Int64Counter("di.resolve.total",
		metric.WithDescription("Total number of Get calls by name and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolve.total counter: %w", err)
	}

	constructTotal, err := meter.Int64Counter("di.construct.total",
		metric.WithDescription("Total number of factory invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.construct.total counter: %w", err)
	}

	constructDuration, err := meter.Float64Histogram("di.construct.duration",
		metric.WithDescription("Duration of factory invocations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.construct.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("di.error.total",
		metric.WithDescription("Total registry errors by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.error.total counter: %w", err)
	}

	return &RegistryMetrics{
		resolveTotal:      resolveTotal,
		constructTotal:    constructTotal,
		constructDuration: constructDuration,
		errorTotal:        errorTotal,
	}, nil
}

// NopRegistryMetrics returns instruments that record nothing.
func NopRegistryMetrics() *RegistryMetrics {
	m, _ := NewRegistryMetrics(noop.NewMeterProvider().Meter(InstrumentationName))
	return m
}

// RecordResolve records one resolution of name. Outcome is "cached",
// "constructed", "instance" or "error".
func (m *RegistryMetrics) RecordResolve(ctx context.Context, name, outcome string) {
	m.resolveTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("name", name),
		attribute.String("outcome", outcome),
	))
}

// RecordConstruct records one factory invocation.
func (m *RegistryMetrics) RecordConstruct(ctx context.Context, name string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("name", name))
	m.constructTotal.Add(ctx, 1, attrs)
	m.constructDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordError records an error by code and operation.
func (m *RegistryMetrics) RecordError(ctx context.Context, code, operation string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("operation", operation),
	))
}
