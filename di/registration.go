package di

import (
	"slices"
	"sync"
)

// Factory builds a value from its resolved dependencies. deps holds one
// value per declared dependency, in declared order. Use Dep to read a typed
// argument.
type Factory func(deps ...any) (any, error)

// Kind tells whether a registration builds its value or holds a fixed one.
type Kind int

const (
	KindType     Kind = iota // built by a Factory
	KindInstance             // pre-built value
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// Registration is the record stored for one name. It is returned by
// Register and RegisterInstance and stays live: Invalidate on it affects
// later resolutions.
type Registration struct {
	name         string
	kind         Kind
	factory      Factory
	singleton    bool
	dependencies []string

	// build serializes singleton construction. mu guards instance and
	// hasInstance and is never held while a factory runs.
	build       sync.Mutex
	mu          sync.Mutex
	instance    any
	hasInstance bool
}

// RegistrationInfo describes a registration for introspection.
type RegistrationInfo struct {
	Name         string
	Kind         Kind
	Singleton    bool
	Dependencies []string
	Resolved     bool
}

// Name returns the registered name.
func (reg *Registration) Name() string { return reg.name }

// Kind returns whether the registration is factory- or instance-backed.
func (reg *Registration) Kind() Kind { return reg.kind }

// Singleton reports whether the factory result is cached.
func (reg *Registration) Singleton() bool { return reg.singleton }

// Dependencies returns a copy of the declared dependency names.
func (reg *Registration) Dependencies() []string {
	return slices.Clone(reg.dependencies)
}

// Resolved reports whether the registration currently holds a value:
// an instance registration that was not invalidated, or a singleton that
// has been constructed.
func (reg *Registration) Resolved() bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.hasInstance
}

// Invalidate drops the stored value. A singleton is constructed again on
// its next resolution; an instance registration becomes unresolvable.
func (reg *Registration) Invalidate() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.instance = nil
	reg.hasInstance = false
}

func (reg *Registration) cached() (any, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.instance, reg.hasInstance
}

func (reg *Registration) store(value any) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.instance = value
	reg.hasInstance = true
}

func (reg *Registration) info() RegistrationInfo {
	return RegistrationInfo{
		Name:         reg.name,
		Kind:         reg.kind,
		Singleton:    reg.singleton,
		Dependencies: reg.Dependencies(),
		Resolved:     reg.Resolved(),
	}
}
