package suite

import (
	"errors"
	"fmt"
)

// Sentinel errors for typed error checking.
var (
	ErrTimeout        = errors.New("suite execution timed out")
	ErrEngineNotFound = errors.New("test engine not found")
	ErrInvalidRequest = errors.New("invalid suite request")
	ErrUnknownBackend = errors.New("unknown execution backend")
)

// ExecutionError wraps errors with run context.
type ExecutionError struct {
	RunID string
	Op    string // The operation that failed
	Err   error
}

func (e *ExecutionError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("run %s: %s: %s", e.RunID, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// IsTimeout returns true if the error is a suite timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsEngineNotFound returns true if the engine binary could not be started.
func IsEngineNotFound(err error) bool {
	return errors.Is(err, ErrEngineNotFound)
}
