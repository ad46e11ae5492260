package reactive

import (
	"errors"
	"fmt"
)

// ErrAlreadySet is returned when a second Executor is installed,
// typically two subsystems both trying to configure spawning at startup.
var ErrAlreadySet = errors.New("reactive: executor already set")

// ErrNoExecutor is returned by operations that need a spawn mechanism
// before any Executor has been installed.
var ErrNoExecutor = errors.New("reactive: no executor installed")

// ErrDisposed is the sentinel wrapped by the panics raised when a
// non-Try accessor touches a disposed node.
var ErrDisposed = errors.New("reactive: node has been disposed")

// DisposedError is the panic value raised by non-Try accessors on a
// disposed node. It unwraps to ErrDisposed so recover sites can match it
// with errors.Is.
type DisposedError struct {
	Kind   string
	Handle Handle
}

func (e *DisposedError) Error() string {
	return fmt.Sprintf("reactive: %s %s has been disposed", e.Kind, e.Handle)
}

func (e *DisposedError) Unwrap() error {
	return ErrDisposed
}

func disposedError(k nodeKind, h Handle) *DisposedError {
	return &DisposedError{Kind: k.String(), Handle: h}
}
