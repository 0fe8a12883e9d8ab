package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/wirekit/errors"
)

// Validator collects field errors for one manifest, config file or
// registration so they can be reported together.
type Validator struct {
	errors []FieldError
}

// FieldError is one rejected field. Field is a dotted path such as
// "registrations[2].dependencies[0]".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError records that field was rejected with message.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors reports whether any field was rejected.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the rejected fields in the order they were recorded.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Merge folds in the fields of an error returned by Validate, prefixing
// each with prefix so a nested entry keeps its position in the manifest.
func (v *Validator) Merge(prefix string, err error) *Validator {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		if err != nil {
			v.AddError(prefix, err.Error())
		}
		return v
	}
	fields, _ := appErr.Details["fields"].([]FieldError)
	if len(fields) == 0 {
		v.AddError(prefix, appErr.Message)
		return v
	}
	for _, f := range fields {
		v.AddError(prefix+"."+f.Field, f.Message)
	}
	return v
}

// Validate returns nil or a single INVALID_INPUT error listing every
// rejected field, with the fields in its "fields" detail.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	appErr := errors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{
		"fields": v.errors,
	}

	return appErr
}

// Required rejects a blank value, e.g. an empty registration name.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// OneOf rejects a value outside allowed. An empty value passes so that
// defaults can fill it in.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" || slices.Contains(allowed, value) {
		return v
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom rejects field with message unless condition holds.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// Required is the one-field form used for a single registry name.
func Required(field, value string) error {
	v := New().Required(field, value)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
