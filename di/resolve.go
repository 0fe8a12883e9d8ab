package di

import (
	"fmt"

	"github.com/kbukum/wirekit/errors"
)

// Resolve resolves a component with type safety, returns error on failure.
//
// Example:
//
//	store, err := di.Resolve[*Store](reg, "Store")
//	if err != nil {
//	    return fmt.Errorf("failed to get store: %w", err)
//	}
func Resolve[T any](r Resolver, name string) (T, error) {
	var zero T
	instance, err := r.Get(name)
	if err != nil {
		return zero, err
	}
	result, ok := instance.(T)
	if !ok {
		return zero, errors.TypeMismatch(name, instance, zero)
	}
	return result, nil
}

// MustResolve resolves a component with type safety, panics on error.
// Use it during startup wiring where a missing component is fatal.
func MustResolve[T any](r Resolver, name string) T {
	result, err := Resolve[T](r, name)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", name, err))
	}
	return result
}

// TryResolve resolves a component, returns zero value and false on any
// failure. Use this when a dependency is optional.
//
//	if metrics, ok := di.TryResolve[MetricsClient](reg, "metrics"); ok {
//	    metrics.RecordEvent(...)
//	}
func TryResolve[T any](r Resolver, name string) (T, bool) {
	result, err := Resolve[T](r, name)
	if err != nil {
		var zero T
		return zero, false
	}
	return result, true
}

// Dep returns factory argument i as a T.
//
//	reg.Register("Service", func(deps ...any) (any, error) {
//	    log, err := di.Dep[*Logger](deps, 0)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &Service{log: log}, nil
//	}, di.WithDependencies("Logger"))
func Dep[T any](deps []any, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(deps) {
		return zero, errors.InvalidDependency(i, fmt.Sprintf("factory received %d arguments", len(deps)))
	}
	result, ok := deps[i].(T)
	if !ok {
		return zero, errors.InvalidDependency(i, fmt.Sprintf("got %T, expected %T", deps[i], zero))
	}
	return result, nil
}
