package di

import "github.com/kbukum/wirekit/errors"

// Sentinels for errors.Is. They match any error with the same code.
var (
	ErrDuplicateName      = errors.Sentinel(errors.ErrCodeDuplicateName)
	ErrCircularDependency = errors.Sentinel(errors.ErrCodeCircularDependency)
	ErrNotFound           = errors.Sentinel(errors.ErrCodeNotFound)
	ErrUnresolvable       = errors.Sentinel(errors.ErrCodeUnresolvable)
	ErrConstructionFailed = errors.Sentinel(errors.ErrCodeConstructionFailed)
	ErrMissingDependency  = errors.Sentinel(errors.ErrCodeMissingDependency)
	ErrTypeMismatch       = errors.Sentinel(errors.ErrCodeTypeMismatch)
	ErrInvalidDependency  = errors.Sentinel(errors.ErrCodeInvalidDependency)
	ErrInvalidInput       = errors.Sentinel(errors.ErrCodeInvalidInput)
)
