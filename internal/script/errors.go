package script

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when running a script on a closed Runner.
var ErrClosed = errors.New("script runner is closed")

// Error is a failed script run.
type Error struct {
	// Script is the chunk name, usually the file path.
	Script string
	// Message is the Lua error message including position.
	Message string
	// Err is the engine error that caused the failure, the context error
	// for a timeout, or the Lua error itself.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("script %s: %s", e.Script, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
