package di

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/wirekit/errors"
	"github.com/kbukum/wirekit/logger"
	"github.com/kbukum/wirekit/observability"
	"github.com/kbukum/wirekit/validation"
)

// Resolution outcomes recorded in metrics.
const (
	outcomeInstance    = "instance"
	outcomeCached      = "cached"
	outcomeConstructed = "constructed"
	outcomeError       = "error"
)

// Resolver is implemented by anything that can produce a value by name.
type Resolver interface {
	Get(name string) (any, error)
}

// Registry maps names to factories or pre-built instances and resolves
// them with their declared dependencies. It is safe for concurrent use.
type Registry struct {
	id      string
	mu      sync.RWMutex
	entries map[string]*Registration

	log     *logger.Logger
	tracer  trace.Tracer
	metrics *observability.RegistryMetrics

	// metricsErr is reported once options are applied, so the warning
	// reaches the configured logger regardless of option order.
	metricsErr error
}

// registerRequest is the validated shape of a Register call.
type registerRequest struct {
	Name         string   `yaml:"name" validate:"required"`
	Dependencies []string `yaml:"dependencies" validate:"dive,required"`
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		id:      uuid.NewString(),
		entries: make(map[string]*Registration),
		log:     logger.Nop(),
		tracer:  observability.Tracer(observability.InstrumentationName),
		metrics: observability.NopRegistryMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("di").WithFields(logger.Fields(logger.FieldRegistryID, r.id))
	if r.metricsErr != nil {
		r.log.Warn("Registry metrics disabled", logger.ErrorFields("metrics", r.metricsErr))
	}
	return r
}

// ID returns the identifier assigned to the registry at construction.
func (r *Registry) ID() string { return r.id }

// Register binds name to a factory. Options select singleton caching and
// declare dependencies. Dependencies that are not registered yet are
// accepted as forward references; a dependency chain through registered
// names that leads back to name is rejected.
func (r *Registry) Register(name string, factory Factory, opts ...RegisterOption) (*Registration, error) {
	reg := &Registration{
		name:    name,
		kind:    KindType,
		factory: factory,
	}
	for _, opt := range opts {
		opt(reg)
	}

	if err := validation.Validate(registerRequest{Name: name, Dependencies: reg.dependencies}); err != nil {
		return nil, r.fail(context.Background(), "register", err)
	}
	if factory == nil {
		return nil, r.fail(context.Background(), "register", errors.InvalidInput("factory", "factory is required for "+name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return nil, r.fail(context.Background(), "register", errors.AlreadyExists(name))
	}
	if path := r.findCycle(name, reg.dependencies); path != nil {
		return nil, r.fail(context.Background(), "register", errors.CircularDependency(path))
	}

	r.entries[name] = reg
	r.log.Debug("Component registered", logger.Fields(
		logger.FieldName, name,
		logger.FieldKind, reg.kind.String(),
		logger.FieldSingleton, reg.singleton,
		logger.FieldDependencies, reg.dependencies,
	))
	return reg, nil
}

// RegisterInstance binds name to a pre-built value. Resolving name returns
// instance itself. A nil instance is stored as absent and resolves to an
// UNRESOLVABLE error.
func (r *Registry) RegisterInstance(name string, instance any) (*Registration, error) {
	if err := validation.Required("name", name); err != nil {
		return nil, r.fail(context.Background(), "register", err)
	}

	reg := &Registration{
		name:        name,
		kind:        KindInstance,
		instance:    instance,
		hasInstance: instance != nil,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return nil, r.fail(context.Background(), "register", errors.AlreadyExists(name))
	}

	r.entries[name] = reg
	r.log.Debug("Component registered", logger.Fields(
		logger.FieldName, name,
		logger.FieldKind, reg.kind.String(),
	))
	return reg, nil
}

// Get resolves name, constructing it and its dependencies as needed.
func (r *Registry) Get(name string) (any, error) {
	return r.GetContext(context.Background(), name)
}

// GetContext is Get with a parent context for the resolution spans.
func (r *Registry) GetContext(ctx context.Context, name string) (any, error) {
	return r.resolve(ctx, name, nil)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// Invalidate drops the stored value of name. See Registration.Invalidate.
func (r *Registry) Invalidate(name string) error {
	reg, ok := r.lookup(name)
	if !ok {
		return r.fail(context.Background(), "invalidate", errors.NotFound(name))
	}
	reg.Invalidate()
	r.log.Info("Component invalidated", logger.Fields(
		logger.FieldName, name,
		logger.FieldKind, reg.kind.String(),
	))
	return nil
}

// Registrations returns info about all registrations, sorted by name.
func (r *Registry) Registrations() []RegistrationInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]RegistrationInfo, 0, len(r.entries))
	for _, reg := range r.entries {
		result = append(result, reg.info())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (r *Registry) lookup(name string) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[name]
	return reg, ok
}

// resolve produces the value of name. path holds the names currently being
// resolved by this call chain, so a forward reference that closes a cycle
// is reported instead of recursing forever.
func (r *Registry) resolve(ctx context.Context, name string, path []string) (any, error) {
	if idx := slices.Index(path, name); idx != -1 {
		cycle := append(slices.Clone(path[idx:]), name)
		return nil, r.fail(ctx, "get", errors.CircularDependency(cycle))
	}

	reg, ok := r.lookup(name)
	if !ok {
		return nil, r.fail(ctx, "get", errors.NotFound(name))
	}

	ctx, span := r.tracer.Start(ctx, observability.SpanResolve, trace.WithAttributes(
		attribute.String(observability.AttrName, name),
		attribute.String(observability.AttrKind, reg.kind.String()),
		attribute.Bool(observability.AttrSingleton, reg.singleton),
	))
	defer span.End()

	value, outcome, err := r.produce(ctx, reg, append(slices.Clip(path), name))
	span.SetAttributes(attribute.Bool(observability.AttrCached, outcome == outcomeCached || outcome == outcomeInstance))
	r.metrics.RecordResolve(ctx, name, outcome)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			span.SetAttributes(attribute.String(observability.AttrErrorCode, string(appErr.Code)))
		}
		observability.SetSpanError(span, err)
		return nil, err
	}
	return value, nil
}

func (r *Registry) produce(ctx context.Context, reg *Registration, path []string) (any, string, error) {
	if value, ok := reg.cached(); ok {
		if reg.kind == KindInstance {
			return value, outcomeInstance, nil
		}
		return value, outcomeCached, nil
	}
	if reg.factory == nil {
		return nil, outcomeError, r.fail(ctx, "get", errors.Unresolvable(reg.name))
	}

	deps := make([]any, len(reg.dependencies))
	for i, dep := range reg.dependencies {
		value, err := r.resolve(ctx, dep, path)
		if err != nil {
			return nil, outcomeError, fmt.Errorf("di: resolving %q for %q: %w", dep, reg.name, err)
		}
		deps[i] = value
	}

	if !reg.singleton {
		value, err := r.construct(ctx, reg, deps)
		if err != nil {
			return nil, outcomeError, err
		}
		return value, outcomeConstructed, nil
	}

	// Dependencies are resolved before taking the build lock so build locks
	// never nest; a concurrent caller may have cached the value meanwhile.
	reg.build.Lock()
	defer reg.build.Unlock()
	if value, ok := reg.cached(); ok {
		return value, outcomeCached, nil
	}
	value, err := r.construct(ctx, reg, deps)
	if err != nil {
		return nil, outcomeError, err
	}
	reg.store(value)
	return value, outcomeConstructed, nil
}

func (r *Registry) construct(ctx context.Context, reg *Registration, deps []any) (value any, err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			value = nil
			err = fmt.Errorf("panic: %v", rec)
		}
		r.metrics.RecordConstruct(ctx, reg.name, time.Since(start))
		if err != nil {
			err = r.fail(ctx, "construct", errors.ConstructionFailed(reg.name, err))
			return
		}
		r.log.WithContext(ctx).Debug("Component constructed", logger.Fields(
			logger.FieldName, reg.name,
			logger.FieldSingleton, reg.singleton,
			logger.FieldDuration, time.Since(start).Milliseconds(),
		))
	}()
	return reg.factory(deps...)
}

// fail records err against operation and returns it unchanged.
func (r *Registry) fail(ctx context.Context, operation string, err error) error {
	code := string(errors.ErrCodeInternal)
	if appErr, ok := errors.AsAppError(err); ok {
		code = string(appErr.Code)
	}
	r.metrics.RecordError(ctx, code, operation)
	r.log.WithContext(ctx).Debug("Registry operation failed", logger.Fields(
		logger.FieldOperation, operation,
		logger.FieldError, err.Error(),
	))
	return err
}
