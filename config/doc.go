// Package config loads the wirekit CLI configuration.
//
// Values come from, highest precedence first: command-line flags bound
// with WithFlag, WIREKIT_* environment variables, a .env file, a YAML
// config file, and defaults.
//
//	cfg, err := config.Load(config.WithConfigFile("wirekit.yml"))
//
// Nested keys map to environment variables by upper-casing and replacing
// dots with underscores, e.g. logging.level is WIREKIT_LOGGING_LEVEL.
package config
