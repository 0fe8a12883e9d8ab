package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/wirekit/di"
	"github.com/kbukum/wirekit/errors"
	"github.com/kbukum/wirekit/validation"
)

// Manifest is a declarative list of registrations.
type Manifest struct {
	Name          string  `yaml:"name"`
	Registrations []Entry `yaml:"registrations"`
}

// Entry declares one registration. Exactly one of Factory and Instance is set.
type Entry struct {
	Name         string   `yaml:"name" validate:"required"`
	Factory      string   `yaml:"factory"`
	Singleton    bool     `yaml:"singleton"`
	Dependencies []string `yaml:"dependencies" validate:"dive,required"`
	Instance     any      `yaml:"instance"`
}

// Catalog maps the factory keys used in a manifest to factories.
type Catalog map[string]di.Factory

// Parse decodes and validates a manifest. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil && err != io.EOF {
		return nil, errors.InvalidInput("manifest", "malformed manifest").WithCause(err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.InvalidInput("manifest", "cannot read "+path).WithCause(err)
	}
	m, err := Parse(data)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr.WithDetail("path", path)
		}
		return nil, err
	}
	return m, nil
}

// Validate checks every entry and reports all problems at once.
func (m *Manifest) Validate() error {
	v := validation.New()
	seen := make(map[string]int, len(m.Registrations))

	for i, e := range m.Registrations {
		field := fmt.Sprintf("registrations[%d]", i)
		if err := validation.Validate(e); err != nil {
			v.Merge(field, err)
		}
		hasFactory := e.Factory != ""
		hasInstance := e.Instance != nil
		v.Custom(hasFactory != hasInstance, field, "must set exactly one of factory or instance")
		v.Custom(hasFactory || (!e.Singleton && len(e.Dependencies) == 0), field,
			"instance entries cannot declare singleton or dependencies")

		if e.Name == "" {
			continue
		}
		if first, dup := seen[e.Name]; dup {
			v.AddError(field+".name", fmt.Sprintf("duplicates registrations[%d]", first))
			continue
		}
		seen[e.Name] = i
	}

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Apply registers every entry in file order. It keeps going after a failed
// entry and returns all failures joined.
func (m *Manifest) Apply(reg *di.Registry, catalog Catalog) error {
	var errs []error
	for _, e := range m.Registrations {
		if err := apply(reg, catalog, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func apply(reg *di.Registry, catalog Catalog, e Entry) error {
	if e.Factory == "" {
		_, err := reg.RegisterInstance(e.Name, e.Instance)
		return err
	}

	factory, ok := catalog[e.Factory]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "Factory not in catalog: "+e.Factory).
			WithDetails(map[string]any{"name": e.Name, "factory": e.Factory})
	}

	opts := []di.RegisterOption{di.WithDependencies(e.Dependencies...)}
	if e.Singleton {
		opts = append(opts, di.Singleton())
	}
	_, err := reg.Register(e.Name, factory, opts...)
	return err
}

// Stub is the value built by StubCatalog factories.
type Stub struct {
	Factory string
	Args    []any
}

// StubCatalog returns a catalog with a placeholder factory for every key m
// uses, so a manifest can be checked and resolved without real code.
func StubCatalog(m *Manifest) Catalog {
	catalog := make(Catalog)
	for _, e := range m.Registrations {
		if e.Factory == "" {
			continue
		}
		key := e.Factory
		catalog[key] = func(deps ...any) (any, error) {
			return &Stub{Factory: key, Args: deps}, nil
		}
	}
	return catalog
}
