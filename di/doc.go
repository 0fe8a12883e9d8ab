// Package di provides a dependency injection registry.
//
// A Registry maps names to either a Factory or a pre-built instance.
// Factories declare the names of their dependencies; resolving a name
// resolves those first, in order, and passes them to the factory
// positionally. Singleton registrations cache their first value.
//
// # Registration
//
//	reg := di.New(di.WithLogger(log))
//	reg.Register("Logger", newLogger, di.Singleton())
//	reg.Register("Service", newService, di.WithDependencies("Logger"))
//	reg.RegisterInstance("Config", cfg)
//
// # Resolution
//
//	svc := di.MustResolve[*Service](reg, "Service")
//
// Cycles through registered names are rejected by Register. A cycle closed
// through a name registered later is reported by Get and by Validate.
package di
