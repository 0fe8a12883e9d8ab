package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified error type returned by wirekit packages.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError carrying the same code, so that
// code-only sentinels work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Sentinel returns a message-less AppError usable as an errors.Is target.
func Sentinel(code ErrorCode) *AppError {
	return &AppError{Code: code}
}

// --- Registry error constructors ---

// AlreadyExists creates an error for a name that is already registered.
func AlreadyExists(name string) *AppError {
	return &AppError{
		Code: ErrCodeDuplicateName, Message: "Already exists in registry: " + name,
		Details: map[string]any{"name": name},
	}
}

// NotFound creates an error for a name that was never registered.
func NotFound(name string) *AppError {
	return &AppError{
		Code: ErrCodeNotFound, Message: "Does not exist in registry: " + name,
		Details: map[string]any{"name": name},
	}
}

// CircularDependency creates an error describing a dependency cycle. The path
// starts and ends with the same name.
func CircularDependency(path []string) *AppError {
	return &AppError{
		Code: ErrCodeCircularDependency, Message: "Circular dependency: " + strings.Join(path, " -> "),
		Details: map[string]any{"path": path},
	}
}

// Unresolvable creates an error for a registration with neither an instance
// nor a factory.
func Unresolvable(name string) *AppError {
	return &AppError{
		Code: ErrCodeUnresolvable, Message: "Type and instance not defined: " + name,
		Details: map[string]any{"name": name},
	}
}

// ConstructionFailed creates an error for a factory that returned an error.
func ConstructionFailed(name string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConstructionFailed, Message: "Failed to construct: " + name,
		Details: map[string]any{"name": name}, Cause: cause,
	}
}

// MissingDependency creates an error for a dependency name with no registration.
func MissingDependency(name, dependency string) *AppError {
	return &AppError{
		Code:    ErrCodeMissingDependency,
		Message: fmt.Sprintf("%s depends on %s which does not exist in registry", name, dependency),
		Details: map[string]any{"name": name, "dependency": dependency},
	}
}

// TypeMismatch creates an error for a resolved value of an unexpected type.
func TypeMismatch(name string, got, want any) *AppError {
	return &AppError{
		Code:    ErrCodeTypeMismatch,
		Message: fmt.Sprintf("%s is %T, expected %T", name, got, want),
		Details: map[string]any{"name": name},
	}
}

// InvalidDependency creates an error for a factory argument that is missing
// or of the wrong type.
func InvalidDependency(index int, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidDependency,
		Message: fmt.Sprintf("Invalid dependency argument %d: %s", index, reason),
		Details: map[string]any{"index": index},
	}
}

// InvalidInput creates an error for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates an error for failed struct validation.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// Internal creates an error for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.", Cause: cause,
	}
}

// --- Inspection helpers ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, Sentinel(code))
}

// Join wraps the standard library join so callers need only one errors import.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
