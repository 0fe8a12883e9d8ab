package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kbukum/wirekit/errors"
)

// EnvPrefix prefixes environment overrides, e.g. WIREKIT_LOGGING_LEVEL.
const EnvPrefix = "WIREKIT"

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file. Variables already set in the environment win.
func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver handles finding config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths if provided, otherwise the first
// existing candidate for each.
func (cr *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.first(configCandidates(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = cr.first(envCandidates(serviceName))
	}
	return resolved
}

func (cr *Resolver) first(paths []string) string {
	for _, path := range paths {
		if cr.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

func configCandidates(serviceName string) []string {
	var paths []string
	for _, ext := range []string{"yml", "yaml"} {
		paths = append(paths,
			fmt.Sprintf("./%s.%s", serviceName, ext),
			fmt.Sprintf("./config/%s.%s", serviceName, ext),
			fmt.Sprintf("./cmd/%s/config.%s", serviceName, ext),
		)
	}
	return paths
}

func envCandidates(serviceName string) []string {
	var paths []string
	for _, dir := range []string{".", "./config", fmt.Sprintf("./cmd/%s", serviceName)} {
		paths = append(paths,
			fmt.Sprintf("%s/.env.%s", dir, serviceName),
			fmt.Sprintf("%s/.env", dir),
		)
	}
	return paths
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	Flags      map[string]*pflag.Flag
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithFlag binds a command-line flag to a config key. A flag the user set
// overrides files and environment; an unset flag is ignored.
func WithFlag(key string, flag *pflag.Flag) LoaderOption {
	return func(lc *LoaderConfig) {
		if flag == nil {
			return
		}
		if lc.Flags == nil {
			lc.Flags = make(map[string]*pflag.Flag)
		}
		lc.Flags[key] = flag
	}
}

// Load reads configuration with this precedence, highest first: set flags,
// WIREKIT_* environment variables (including those from a .env file), the
// config file, defaults. The result has defaults applied and is validated.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(ServiceName, lc)

	v := viper.New()
	setKnownKeys(v)

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return nil, errors.InvalidInput("env_file", "cannot load "+files.EnvFile).WithCause(err)
		}
	}

	if files.ConfigFile != "" {
		if !lc.FileSystem.Exists(files.ConfigFile) {
			return nil, errors.InvalidInput("config_file", "not found: "+files.ConfigFile)
		}
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.InvalidInput("config_file", "cannot read "+files.ConfigFile).WithCause(err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range lc.Flags {
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, errors.Internal(err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.InvalidInput("config", "cannot decode configuration").WithCause(err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setKnownKeys registers every key with its zero value so AutomaticEnv
// applies to keys absent from the config file. Real defaults come from
// Config.ApplyDefaults.
func setKnownKeys(v *viper.Viper) {
	for key, zero := range map[string]any{
		"name":                 "",
		"environment":          "",
		"manifest":             "",
		"logging.service_name": "",
		"logging.level":        "",
		"logging.format":       "",
		"logging.no_color":     false,
		"logging.timestamp":    false,
		"logging.caller":       false,
		"tracing.enabled":      false,
		"tracing.sample_rate":  0.0,
	} {
		v.SetDefault(key, zero)
	}
}
