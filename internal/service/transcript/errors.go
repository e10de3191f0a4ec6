package transcript

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNothingToSave   = errors.New("no messages to save")
	ErrInvalidID       = errors.New("invalid session id")
)

// ParseError reports a record that exists but is not a valid transcript.
type ParseError struct {
	ID  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse transcript %s: %v", e.ID, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StorageError wraps filesystem failures.
type StorageError struct {
	Op   string // "read", "write", "remove", "scan"
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("transcript storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
