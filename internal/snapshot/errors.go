package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSnapshot means the manifest of an environment is absent or unreadable.
	ErrMissingSnapshot = errors.New("missing snapshot")
	// ErrCorruptSnapshot means a table document listed in the manifest is absent or malformed.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// Error describes a snapshot that could not be loaded.
type Error struct {
	Kind        error  // ErrMissingSnapshot or ErrCorruptSnapshot
	Environment string // environment name as the operator typed it
	Table       string // empty for manifest errors
	Path        string
	Err         error
}

func (e *Error) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("no dump for env '%s' (%s): %v", e.Environment, e.Path, e.Err)
	}
	return fmt.Sprintf("corrupt dump for env '%s': table '%s' (%s): %v", e.Environment, e.Table, e.Path, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func missing(env, path string, err error) *Error {
	return &Error{Kind: ErrMissingSnapshot, Environment: env, Path: path, Err: err}
}

func corrupt(env, table, path string, err error) *Error {
	return &Error{Kind: ErrCorruptSnapshot, Environment: env, Table: table, Path: path, Err: err}
}
