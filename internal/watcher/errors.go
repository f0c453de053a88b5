// internal/watcher/errors.go
package watcher

import (
	"errors"
	"fmt"
)

// ErrNilCallback is returned when no callback is supplied.
var ErrNilCallback = errors.New("watcher: callback must be a non-nil function")

// ConfigurationError reports an invalid option. A watcher is never started
// when construction returns one.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("watcher: invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func invalid(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Err: fmt.Errorf(format, args...)}
}
