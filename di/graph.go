package di

import (
	"slices"
	"sort"

	"github.com/kbukum/wirekit/errors"
)

// findCycle walks the registered dependency graph from deps and returns the
// path back to name, or nil. Unregistered names end the walk. Caller must
// hold r.mu.
func (r *Registry) findCycle(name string, deps []string) []string {
	visited := make(map[string]bool)

	var walk func(current string, path []string) []string
	walk = func(current string, path []string) []string {
		path = append(path, current)
		if current == name {
			return slices.Clone(path)
		}
		if visited[current] {
			return nil
		}
		visited[current] = true

		reg, ok := r.entries[current]
		if !ok {
			return nil
		}
		for _, dep := range reg.dependencies {
			if found := walk(dep, path); found != nil {
				return found
			}
		}
		return nil
	}

	for _, dep := range deps {
		if found := walk(dep, []string{name}); found != nil {
			return found
		}
	}
	return nil
}

// snapshot copies the dependency lists of every registration.
func (r *Registry) snapshot() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	graph := make(map[string][]string, len(r.entries))
	for name, reg := range r.entries {
		graph[name] = reg.dependencies
	}
	return graph
}

// Validate checks the whole graph: every declared dependency must be
// registered and no dependency chain may lead back to where it started,
// including chains closed through forward references. All problems are
// reported in one joined error.
func (r *Registry) Validate() error {
	graph := r.snapshot()

	names := make([]string, 0, len(graph))
	for name := range graph {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		for _, dep := range graph[name] {
			if _, ok := graph[dep]; !ok {
				errs = append(errs, errors.MissingDependency(name, dep))
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(graph))
	var stack []string

	var visit func(name string)
	visit = func(name string) {
		state[name] = visiting
		stack = append(stack, name)
		for _, dep := range graph[name] {
			if _, ok := graph[dep]; !ok {
				continue
			}
			switch state[dep] {
			case unvisited:
				visit(dep)
			case visiting:
				idx := slices.Index(stack, dep)
				cycle := append(slices.Clone(stack[idx:]), dep)
				errs = append(errs, errors.CircularDependency(cycle))
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
	}

	for _, name := range names {
		if state[name] == unvisited {
			visit(name)
		}
	}

	return errors.Join(errs...)
}

// Order returns the names that resolving name constructs or reads, each
// once, dependencies before dependents and name last.
func (r *Registry) Order(name string) ([]string, error) {
	graph := r.snapshot()
	if _, ok := graph[name]; !ok {
		return nil, errors.NotFound(name)
	}

	var order []string
	seen := make(map[string]bool)
	var path []string

	var visit func(current string) error
	visit = func(current string) error {
		if idx := slices.Index(path, current); idx != -1 {
			return errors.CircularDependency(append(slices.Clone(path[idx:]), current))
		}
		if seen[current] {
			return nil
		}
		deps, ok := graph[current]
		if !ok {
			return errors.MissingDependency(path[len(path)-1], current)
		}

		path = append(path, current)
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]

		seen[current] = true
		order = append(order, current)
		return nil
	}

	if err := visit(name); err != nil {
		return nil, err
	}
	return order, nil
}
