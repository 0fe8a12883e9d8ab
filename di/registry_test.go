package di_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/wirekit/di"
	"github.com/kbukum/wirekit/errors"
	"github.com/kbukum/wirekit/logger"
	"github.com/kbukum/wirekit/observability"
)

type testLogger struct{ _ byte }

type volleyball struct{ net *net }

type net struct{ logger *testLogger }

type football struct{}

func newLogger(...any) (any, error) { return &testLogger{}, nil }

func newNet(deps ...any) (any, error) {
	l, err := di.Dep[*testLogger](deps, 0)
	if err != nil {
		return nil, err
	}
	return &net{logger: l}, nil
}

func newVolleyball(deps ...any) (any, error) {
	n, err := di.Dep[*net](deps, 0)
	if err != nil {
		return nil, err
	}
	return &volleyball{net: n}, nil
}

func noop(...any) (any, error) { return &struct{ _ byte }{}, nil }

func TestRegistry_Get_NotFound(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Get("dependency")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Does not exist in registry: dependency")
	assert.ErrorIs(t, err, di.ErrNotFound)
}

func TestRegistry_Singleton(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Volleyball", noop, di.Singleton())
	require.NoError(t, err)

	first, err := reg.Get("Volleyball")
	require.NoError(t, err)
	second, err := reg.Get("Volleyball")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRegistry_NonSingleton(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Volleyball", noop)
	require.NoError(t, err)

	first, err := reg.Get("Volleyball")
	require.NoError(t, err)
	second, err := reg.Get("Volleyball")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestRegistry_DistinctTypes(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Volleyball", func(...any) (any, error) { return &volleyball{}, nil })
	require.NoError(t, err)
	_, err = reg.Register("Football", func(...any) (any, error) { return &football{}, nil })
	require.NoError(t, err)

	v, err := reg.Get("Volleyball")
	require.NoError(t, err)
	f, err := reg.Get("Football")
	require.NoError(t, err)
	assert.IsType(t, &volleyball{}, v)
	assert.IsType(t, &football{}, f)
}

func TestRegistry_RegisterInstance(t *testing.T) {
	t.Parallel()
	reg := di.New()
	logger := &struct{ Logger string }{Logger: "logger"}

	_, err := reg.RegisterInstance("logger", logger)
	require.NoError(t, err)

	got, err := reg.Get("logger")
	require.NoError(t, err)
	assert.Same(t, logger, got)

	typed, err := di.Resolve[*struct{ Logger string }](reg, "logger")
	require.NoError(t, err)
	assert.Equal(t, "logger", typed.Logger)
}

func TestRegistry_DuplicateName(t *testing.T) {
	t.Parallel()
	reg := di.New()
	original := &struct{ _ byte }{}

	_, err := reg.RegisterInstance("object", original)
	require.NoError(t, err)

	_, err = reg.RegisterInstance("object", &struct{ _ byte }{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Already exists in registry: object")
	assert.ErrorIs(t, err, di.ErrDuplicateName)

	_, err = reg.Register("object", noop)
	assert.ErrorIs(t, err, di.ErrDuplicateName)

	got, err := reg.Get("object")
	require.NoError(t, err)
	assert.Same(t, original, got, "failed registration must leave the original in place")
}

func TestRegistry_InvalidatedInstance(t *testing.T) {
	t.Parallel()
	reg := di.New()

	registration, err := reg.RegisterInstance("object", &struct{ _ byte }{})
	require.NoError(t, err)
	registration.Invalidate()

	_, err = reg.Get("object")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Type and instance not defined: object")
	assert.ErrorIs(t, err, di.ErrUnresolvable)
}

func TestRegistry_NilInstance(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.RegisterInstance("object", nil)
	require.NoError(t, err)

	_, err = reg.Get("object")
	assert.ErrorIs(t, err, di.ErrUnresolvable)
}

func TestRegistry_InvalidateSingleton(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Logger", newLogger, di.Singleton())
	require.NoError(t, err)

	first, err := reg.Get("Logger")
	require.NoError(t, err)
	require.NoError(t, reg.Invalidate("Logger"))
	second, err := reg.Get("Logger")
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	assert.ErrorIs(t, reg.Invalidate("missing"), di.ErrNotFound)
}

func TestRegistry_ResolvesDependency(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Logger", newLogger)
	require.NoError(t, err)
	_, err = reg.Register("Net", newNet, di.WithDependencies("Logger"))
	require.NoError(t, err)

	n, err := di.Resolve[*net](reg, "Net")
	require.NoError(t, err)
	assert.NotNil(t, n.logger)
}

func TestRegistry_ResolvesSingletonDependency(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Logger", newLogger, di.Singleton())
	require.NoError(t, err)
	_, err = reg.Register("Net", newNet, di.WithDependencies("Logger"))
	require.NoError(t, err)

	first, err := di.Resolve[*net](reg, "Net")
	require.NoError(t, err)
	second, err := di.Resolve[*net](reg, "Net")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Same(t, first.logger, second.logger)
}

func TestRegistry_ResolvesTransientDependency(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Logger", newLogger)
	require.NoError(t, err)
	_, err = reg.Register("Net", newNet, di.WithDependencies("Logger"))
	require.NoError(t, err)

	first, err := di.Resolve[*net](reg, "Net")
	require.NoError(t, err)
	second, err := di.Resolve[*net](reg, "Net")
	require.NoError(t, err)

	assert.NotSame(t, first.logger, second.logger)
}

func TestRegistry_ResolvesArbitraryDepth(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Logger", newLogger)
	require.NoError(t, err)
	_, err = reg.Register("Net", newNet, di.WithDependencies("Logger"))
	require.NoError(t, err)
	_, err = reg.Register("Volleyball", newVolleyball, di.WithDependencies("Net"))
	require.NoError(t, err)

	v, err := di.Resolve[*volleyball](reg, "Volleyball")
	require.NoError(t, err)
	require.NotNil(t, v.net)
	assert.NotNil(t, v.net.logger)
}

func TestRegistry_ForwardReference(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Net", newNet, di.WithDependencies("Logger"))
	require.NoError(t, err)

	_, err = reg.Get("Net")
	require.Error(t, err)
	assert.ErrorIs(t, err, di.ErrNotFound)

	_, err = reg.Register("Logger", newLogger)
	require.NoError(t, err)

	_, err = reg.Get("Net")
	assert.NoError(t, err)
}

func TestRegistry_RejectsCycle(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Net", newNet, di.WithDependencies("Volleyball"))
	require.NoError(t, err)

	_, err = reg.Register("Volleyball", newVolleyball, di.WithDependencies("Net"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Circular dependency")
	assert.ErrorIs(t, err, di.ErrCircularDependency)
	assert.False(t, reg.Has("Volleyball"))
}

func TestRegistry_RejectsDeepCycle(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Antenna", noop, di.WithDependencies("Volleyball"))
	require.NoError(t, err)
	_, err = reg.Register("Net", noop, di.WithDependencies("Antenna"))
	require.NoError(t, err)

	_, err = reg.Register("Volleyball", noop, di.WithDependencies("Net"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Volleyball -> Net -> Antenna -> Volleyball")

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Volleyball", "Net", "Antenna", "Volleyball"}, appErr.Details["path"])
}

func TestRegistry_RejectsCycleThroughLaterDependency(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Net", noop, di.WithDependencies("Volleyball"))
	require.NoError(t, err)

	_, err = reg.Register("Volleyball", noop, di.WithDependencies("Logger", "Net"))
	assert.ErrorIs(t, err, di.ErrCircularDependency)
}

func TestRegistry_RejectsSelfDependency(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Volleyball", noop, di.WithDependencies("Volleyball"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Volleyball -> Volleyball")
}

func TestRegistry_DiamondIsNotACycle(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Logger", newLogger, di.Singleton())
	require.NoError(t, err)
	_, err = reg.Register("Net", noop, di.WithDependencies("Logger"))
	require.NoError(t, err)
	_, err = reg.Register("Antenna", noop, di.WithDependencies("Logger"))
	require.NoError(t, err)
	_, err = reg.Register("Volleyball", noop, di.WithDependencies("Net", "Antenna", "Logger"))
	require.NoError(t, err)

	_, err = reg.Get("Volleyball")
	assert.NoError(t, err)
}

func TestRegistry_RejectsCycleRegisteredOutOfOrder(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Net", noop, di.WithDependencies("Volleyball"))
	require.NoError(t, err)
	_, err = reg.Register("Antenna", noop, di.WithDependencies("Net"))
	require.NoError(t, err)

	_, err = reg.Register("Volleyball", noop, di.WithDependencies("Antenna"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Volleyball -> Antenna -> Net -> Volleyball")
	assert.False(t, reg.Has("Volleyball"))

	err = reg.Validate()
	assert.ErrorIs(t, err, di.ErrMissingDependency)
	assert.NotErrorIs(t, err, di.ErrCircularDependency)
}

func TestRegistry_Validate(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Logger", newLogger)
	require.NoError(t, err)
	_, err = reg.Register("Net", newNet, di.WithDependencies("Logger"))
	require.NoError(t, err)
	assert.NoError(t, reg.Validate())

	_, err = reg.Register("Volleyball", newVolleyball, di.WithDependencies("Net", "Antenna"))
	require.NoError(t, err)

	err = reg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, di.ErrMissingDependency)
	assert.Contains(t, err.Error(), "Volleyball depends on Antenna which does not exist in registry")
}

func TestRegistry_Order(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Logger", newLogger, di.Singleton())
	require.NoError(t, err)
	_, err = reg.Register("Net", newNet, di.WithDependencies("Logger"))
	require.NoError(t, err)
	_, err = reg.Register("Volleyball", newVolleyball, di.WithDependencies("Net", "Logger"))
	require.NoError(t, err)

	order, err := reg.Order("Volleyball")
	require.NoError(t, err)
	assert.Equal(t, []string{"Logger", "Net", "Volleyball"}, order)

	_, err = reg.Order("missing")
	assert.ErrorIs(t, err, di.ErrNotFound)

	_, err = reg.Register("Antenna", noop, di.WithDependencies("Pole"))
	require.NoError(t, err)
	_, err = reg.Order("Antenna")
	assert.ErrorIs(t, err, di.ErrMissingDependency)
}

func TestRegistry_Registrations(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Net", newNet, di.WithDependencies("Logger"))
	require.NoError(t, err)
	_, err = reg.Register("Logger", newLogger, di.Singleton())
	require.NoError(t, err)
	_, err = reg.RegisterInstance("Config", map[string]string{})
	require.NoError(t, err)

	infos := reg.Registrations()
	require.Len(t, infos, 3)
	assert.Equal(t, "Config", infos[0].Name)
	assert.Equal(t, di.KindInstance, infos[0].Kind)
	assert.True(t, infos[0].Resolved)
	assert.Equal(t, "Logger", infos[1].Name)
	assert.True(t, infos[1].Singleton)
	assert.False(t, infos[1].Resolved)
	assert.Equal(t, []string{"Logger"}, infos[2].Dependencies)

	_, err = reg.Get("Net")
	require.NoError(t, err)
	assert.True(t, reg.Registrations()[1].Resolved)
}

func TestRegistry_RegisterInvalidInput(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("", noop)
	assert.ErrorIs(t, err, di.ErrInvalidInput)

	_, err = reg.Register("Net", nil)
	assert.ErrorIs(t, err, di.ErrInvalidInput)

	_, err = reg.Register("Net", noop, di.WithDependencies("Logger", ""))
	assert.ErrorIs(t, err, di.ErrInvalidInput)

	_, err = reg.RegisterInstance("", 1)
	assert.ErrorIs(t, err, di.ErrInvalidInput)

	assert.Empty(t, reg.Registrations())
}

func TestRegistry_FactoryError(t *testing.T) {
	t.Parallel()
	reg := di.New()
	boom := stderrors.New("boom")

	_, err := reg.Register("Logger", func(...any) (any, error) { return nil, boom }, di.Singleton())
	require.NoError(t, err)
	_, err = reg.Register("Net", newNet, di.WithDependencies("Logger"))
	require.NoError(t, err)

	_, err = reg.Get("Net")
	require.Error(t, err)
	assert.ErrorIs(t, err, di.ErrConstructionFailed)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `resolving "Logger" for "Net"`)

	registration := reg.Registrations()[0]
	assert.False(t, registration.Resolved, "failed singleton must not be cached")
}

func TestRegistry_FactoryPanic(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.Register("Logger", func(...any) (any, error) { panic("kaboom") })
	require.NoError(t, err)

	_, err = reg.Get("Logger")
	require.Error(t, err)
	assert.ErrorIs(t, err, di.ErrConstructionFailed)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestRegistry_DepTypeMismatch(t *testing.T) {
	t.Parallel()
	reg := di.New()

	_, err := reg.RegisterInstance("Logger", "not a logger")
	require.NoError(t, err)
	_, err = reg.Register("Net", newNet, di.WithDependencies("Logger"))
	require.NoError(t, err)

	_, err = reg.Get("Net")
	assert.ErrorIs(t, err, di.ErrConstructionFailed)
	assert.ErrorIs(t, err, di.ErrInvalidDependency)
}

func TestRegistry_ConcurrentSingletonConstructsOnce(t *testing.T) {
	t.Parallel()
	reg := di.New()
	var calls atomic.Int32

	_, err := reg.Register("Logger", func(...any) (any, error) {
		calls.Add(1)
		return &testLogger{}, nil
	}, di.Singleton())
	require.NoError(t, err)
	_, err = reg.Register("Net", newNet, di.WithDependencies("Logger"), di.Singleton())
	require.NoError(t, err)

	const workers = 32
	results := make([]any, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := reg.Get("Net")
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Same(t, results[0], v)
	}
}

func TestRegistry_SingletonFactoryCanInspectRegistry(t *testing.T) {
	t.Parallel()
	reg := di.New()
	var seen []di.RegistrationInfo

	_, err := reg.Register("Logger", func(...any) (any, error) {
		seen = reg.Registrations()
		if err := reg.Invalidate("Logger"); err != nil {
			return nil, err
		}
		return &testLogger{}, nil
	}, di.Singleton())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := reg.Get("Logger")
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("singleton factory blocked on its own registration")
	}
	require.Len(t, seen, 1)
	assert.False(t, seen[0].Resolved)
	assert.True(t, reg.Registrations()[0].Resolved)
}

func TestRegistry_ConcurrentRegisterAndGet(t *testing.T) {
	t.Parallel()
	reg := di.New()

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("component-%d", i)
			_, err := reg.Register(name, noop, di.Singleton())
			assert.NoError(t, err)
			_, err = reg.Get(name)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, reg.Registrations(), 16)
}

func TestRegistry_Spans(t *testing.T) {
	t.Parallel()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	reg := di.New(di.WithTracer(tp.Tracer(observability.InstrumentationName)))
	_, err := reg.Register("Logger", newLogger, di.Singleton())
	require.NoError(t, err)
	_, err = reg.Register("Net", newNet, di.WithDependencies("Logger"))
	require.NoError(t, err)

	_, err = reg.GetContext(context.Background(), "Net")
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	byName := map[string]tracetest.SpanStub{}
	for _, s := range spans {
		assert.Equal(t, observability.SpanResolve, s.Name)
		for _, kv := range s.Attributes {
			if kv.Key == attribute.Key(observability.AttrName) {
				byName[kv.Value.AsString()] = s
			}
		}
	}
	require.Contains(t, byName, "Logger")
	require.Contains(t, byName, "Net")
	assert.Equal(t, byName["Net"].SpanContext.SpanID(), byName["Logger"].Parent.SpanID())

	exporter.Reset()
	require.NoError(t, reg.Invalidate("Logger"))
	_, err = reg.Register("Broken", func(...any) (any, error) { return nil, stderrors.New("boom") })
	require.NoError(t, err)
	_, err = reg.Get("Broken")
	require.Error(t, err)

	spans = exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestRegistry_Metrics(t *testing.T) {
	t.Parallel()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	reg := di.New(di.WithMeter(mp.Meter(observability.InstrumentationName)))
	_, err := reg.Register("Logger", newLogger, di.Singleton())
	require.NoError(t, err)

	for range 3 {
		_, err = reg.Get("Logger")
		require.NoError(t, err)
	}
	_, err = reg.Get("missing")
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(3), sums["di.resolve.total"])
	assert.Equal(t, int64(1), sums["di.construct.total"])
	assert.Equal(t, int64(1), sums["di.error.total"])
}

func TestRegistry_Logs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "wirekit", &buf)

	reg := di.New(di.WithLogger(log))
	_, err := reg.Register("Logger", newLogger, di.Singleton())
	require.NoError(t, err)
	_, err = reg.Get("Logger")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"Component registered"`)
	assert.Contains(t, out, `"message":"Component constructed"`)
	assert.Contains(t, out, `"registry_id":"`+reg.ID()+`"`)
	assert.Contains(t, out, `"component":"di"`)
	assert.Contains(t, out, `"name":"Logger"`)
}

type failingMeter struct{ metric.Meter }

func (failingMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return nil, stderrors.New("meter unavailable")
}

func TestRegistry_MetricsFailureLoggedRegardlessOfOptionOrder(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "wirekit", &buf)

	reg := di.New(di.WithMeter(failingMeter{}), di.WithLogger(log))
	_, err := reg.Register("Logger", newLogger)
	require.NoError(t, err)
	_, err = reg.Get("Logger")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"Registry metrics disabled"`)
	assert.Contains(t, out, "meter unavailable")
	assert.Contains(t, out, `"registry_id":"`+reg.ID()+`"`)
}
