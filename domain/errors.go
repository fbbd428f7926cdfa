package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection means a storage connection could not be established or verified.
	ErrConnection = errors.New("storage connection error")
	// ErrDecodeFault means a stored document is missing a required field or has an unexpected type.
	ErrDecodeFault = errors.New("malformed document")
	// ErrStorage wraps any failure reported by the storage driver.
	ErrStorage = errors.New("storage operation error")
	// ErrNotFound is returned when a collection or its metadata does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAuthFailed is returned when credentials are rejected.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrDocumentTooLarge is returned when a document cannot fit in a capped collection.
	ErrDocumentTooLarge = errors.New("document larger than capped size")
	// ErrChainTooDeep is returned when an error chain exceeds the codec's depth limit.
	ErrChainTooDeep = errors.New("error chain too deep")
	// ErrUnknownCommand is returned by RunCommand for commands the driver does not implement.
	ErrUnknownCommand = errors.New("unknown command")
)

// DecodeFault describes why a document could not be decoded.
// It matches ErrDecodeFault with errors.Is.
type DecodeFault struct {
	Field  string // Dotted path of the offending field.
	Reason string
}

// Error implements the error interface.
func (f *DecodeFault) Error() string {
	return fmt.Sprintf("%s: field %q %s", ErrDecodeFault, f.Field, f.Reason)
}

// Is reports whether target is ErrDecodeFault.
func (f *DecodeFault) Is(target error) bool {
	return target == ErrDecodeFault
}

// ConnectionError is returned when an appender fails to connect at startup.
type ConnectionError struct {
	Address string
	Err     error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s : %v", e.Address, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnection, e.Err}
}
