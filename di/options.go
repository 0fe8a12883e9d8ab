package di

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/wirekit/logger"
	"github.com/kbukum/wirekit/observability"
)

// RegisterOption configures a registration made with Register.
type RegisterOption func(*Registration)

// Singleton caches the first constructed value and returns it from every
// later resolution.
func Singleton() RegisterOption {
	return func(reg *Registration) {
		reg.singleton = true
	}
}

// WithDependencies declares the names resolved and passed to the factory,
// in order. Calling it more than once appends.
func WithDependencies(names ...string) RegisterOption {
	return func(reg *Registration) {
		reg.dependencies = append(reg.dependencies, names...)
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration and construction events.
func WithLogger(l *logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithTracer sets the tracer used for resolution spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Registry) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithMeter records registry metrics on the given meter.
func WithMeter(m metric.Meter) Option {
	return func(r *Registry) {
		if m == nil {
			return
		}
		metrics, err := observability.NewRegistryMetrics(m)
		if err != nil {
			r.metricsErr = err
			return
		}
		r.metrics = metrics
		r.metricsErr = nil
	}
}
