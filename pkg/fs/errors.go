package fs

import "errors"

// FSError represents a domain error from filesystem operations.
//
// These are business logic errors (file not found, table full, etc.)
// as opposed to infrastructure errors (I/O failure on the backing file).
//
// The protocol layer translates FSError values to wire responses
// ("ERROR: <message>"); callers inside the process should switch on Code.
type FSError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Name is the file name related to the error (if applicable)
	Name string
}

// Error implements the error interface.
func (e *FSError) Error() string {
	return e.Message
}

// ErrorCode represents the category of a filesystem error.
type ErrorCode int

const (
	// ErrNotFound indicates the named file doesn't exist
	ErrNotFound ErrorCode = iota

	// ErrExists indicates a file with the name already exists
	ErrExists

	// ErrInvalidName indicates the name is empty or exceeds MaxNameLen bytes
	ErrInvalidName

	// ErrNoSpace indicates the inode table is full, the free-block count is
	// insufficient for a write, or no contiguous run of free blocks exists
	ErrNoSpace
)

// Code extracts the ErrorCode from an error, if it carries one.
func Code(err error) (ErrorCode, bool) {
	var fsErr *FSError
	if errors.As(err, &fsErr) {
		return fsErr.Code, true
	}
	return 0, false
}

func errNotFound(name string) error {
	return &FSError{Code: ErrNotFound, Message: "File not found.", Name: name}
}

func errExists(name string) error {
	return &FSError{Code: ErrExists, Message: "File already exists.", Name: name}
}

func errInvalidName(name, message string) error {
	return &FSError{Code: ErrInvalidName, Message: message, Name: name}
}

func errNoSpace(message string) error {
	return &FSError{Code: ErrNoSpace, Message: message}
}
