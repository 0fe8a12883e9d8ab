// Package validation provides input validation for registry names and
// wiring manifests.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Both report failures as
// errors.AppError with code INVALID_INPUT and a "fields" detail.
//
// # Struct Tag Validation
//
//	type Entry struct {
//	    Name         string   `yaml:"name" validate:"required"`
//	    Dependencies []string `yaml:"dependencies" validate:"dive,required"`
//	}
//	err := validation.Validate(entry)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Custom(factory == "" || instance == nil, "factory", "cannot be combined with instance")
//	err := v.Validate()
package validation
