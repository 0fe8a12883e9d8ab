package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Registration errors
const (
	// ErrCodeDuplicateName indicates the name is already registered.
	ErrCodeDuplicateName ErrorCode = "DUPLICATE_NAME"
	// ErrCodeCircularDependency indicates a dependency chain leads back to itself.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
)

// Resolution errors
const (
	// ErrCodeNotFound indicates the name was never registered.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeUnresolvable indicates a registration has no instance and no factory.
	ErrCodeUnresolvable ErrorCode = "UNRESOLVABLE"
	// ErrCodeConstructionFailed indicates a factory returned an error.
	ErrCodeConstructionFailed ErrorCode = "CONSTRUCTION_FAILED"
	// ErrCodeMissingDependency indicates a declared dependency has no registration.
	ErrCodeMissingDependency ErrorCode = "MISSING_DEPENDENCY"
	// ErrCodeTypeMismatch indicates a resolved value has an unexpected type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrCodeInvalidDependency indicates a factory argument is missing or mistyped.
	ErrCodeInvalidDependency ErrorCode = "INVALID_DEPENDENCY"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)
