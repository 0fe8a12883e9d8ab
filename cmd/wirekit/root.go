package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/wirekit/config"
	"github.com/kbukum/wirekit/di"
	"github.com/kbukum/wirekit/errors"
	"github.com/kbukum/wirekit/logger"
	"github.com/kbukum/wirekit/manifest"
	"github.com/kbukum/wirekit/observability"
)

// errProblems is returned when a command reported problems on stdout.
var errProblems = stderrors.New("problems found")

// app holds what every subcommand needs once configuration is loaded.
type app struct {
	version string
	cfg     *config.Config

	// base is untagged; registries and the tracer add their own component.
	base *logger.Logger
	log  *logger.Logger
	tp   *sdktrace.TracerProvider
}

// newRegistry returns a registry wired to the app's logger and tracer.
func (a *app) newRegistry() *di.Registry {
	opts := []di.Option{di.WithLogger(a.base)}
	if a.tp != nil {
		opts = append(opts, di.WithTracer(a.tp.Tracer(observability.InstrumentationName)))
	}
	return di.New(opts...)
}

// wiring is a manifest applied to a registry with stub factories.
type wiring struct {
	manifest *manifest.Manifest
	reg      *di.Registry
	// applyErr joins the entries the registry rejected.
	applyErr error
}

// applyManifest loads the configured manifest and applies it to a fresh
// registry. Rejected entries end up in applyErr, not in the returned error.
func (a *app) applyManifest() (*wiring, error) {
	m, err := manifest.Load(a.cfg.Manifest)
	if err != nil {
		return nil, err
	}
	w := &wiring{manifest: m, reg: a.newRegistry()}
	w.applyErr = m.Apply(w.reg, manifest.StubCatalog(m))
	a.log.Debug("Manifest applied", logger.Fields(
		"manifest", a.cfg.Manifest,
		"registrations", len(m.Registrations),
		logger.FieldRegistryID, w.reg.ID(),
	))
	return w, nil
}

func (a *app) shutdown(ctx context.Context) error {
	if a.tp == nil {
		return nil
	}
	return a.tp.Shutdown(ctx)
}

func newRootCmd(version string) *cobra.Command {
	var (
		cfgFile string
		envFile string
	)
	a := &app{version: version}

	rootCmd := &cobra.Command{
		Use:   "wirekit",
		Short: "Check and inspect dependency wiring manifests",
		Long: `wirekit reads a YAML wiring manifest, registers every entry in a
dependency injection registry with placeholder factories, and reports
duplicate names, missing dependencies and dependency cycles.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, cfgFile, envFile)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.shutdown(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./wirekit.yml or ./config/wirekit.yml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"env file with WIREKIT_* overrides (default: ./.env)")
	rootCmd.PersistentFlags().StringP("manifest", "m", "", "wiring manifest (default: wiring.yml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error, disabled")
	rootCmd.PersistentFlags().Bool("trace", false, "print resolution spans to stderr")

	rootCmd.AddCommand(newCheckCmd(a), newGraphCmd(a))
	return rootCmd
}

func (a *app) init(cmd *cobra.Command, cfgFile, envFile string) error {
	opts := []config.LoaderOption{
		config.WithFlag("manifest", cmd.Flags().Lookup("manifest")),
		config.WithFlag("logging.level", cmd.Flags().Lookup("log-level")),
		config.WithFlag("tracing.enabled", cmd.Flags().Lookup("trace")),
	}
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg
	a.base = logger.NewWithWriter(&cfg.Logging, cfg.Logging.ServiceName, cmd.ErrOrStderr())
	a.log = a.base.WithComponent("cli")

	if cfg.Tracing.Enabled {
		tp, err := newTracerProvider(cmd, cfg, a.version, a.base)
		if err != nil {
			return fmt.Errorf("starting tracer: %w", err)
		}
		a.tp = tp
	}
	return nil
}

func newTracerProvider(cmd *cobra.Command, cfg *config.Config, version string, log *logger.Logger) (*sdktrace.TracerProvider, error) {
	exporter, err := observability.NewStdoutExporter(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return observability.InitTracer(cmd.Context(), observability.TracerConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: version,
		Environment:    cfg.Environment,
		SampleRate:     cfg.Tracing.SampleRate,
		Logger:         log,
	}, exporter)
}

// printProblems writes one line per error in err, unwrapping joined errors.
// It returns the number of lines written.
func printProblems(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		n := 0
		for _, e := range joined.Unwrap() {
			n += printProblems(w, e)
		}
		return n
	}
	if appErr, ok := errors.AsAppError(err); ok {
		fmt.Fprintf(w, "%-20s %s\n", appErr.Code, appErr.Message)
		return 1
	}
	fmt.Fprintf(w, "%-20s %s\n", errors.ErrCodeInternal, err.Error())
	return 1
}
