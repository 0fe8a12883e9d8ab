// Package logger provides the zerolog-backed structured logger shared by
// the registry, the tracer setup and the wirekit CLI.
//
// Loggers are created explicitly and passed down; a registry built without
// one logs nothing.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewWithWriter(&cfg.Logging, "wirekit", os.Stderr).WithComponent("cli")
//	reg := di.New(di.WithLogger(log))
package logger
