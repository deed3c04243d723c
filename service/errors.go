package service

import (
	"errors"
	"fmt"
)

// Errors detected before any request is sent
var (
	ErrEmptyInput      = errors.New("empty search input")
	ErrInvalidSearch   = errors.New("invalid search action")
	ErrNoFile          = errors.New("no file provided")
	ErrInvalidFileType = errors.New("file is not a PDF")
	ErrFileTooLarge    = errors.New("file exceeds upload size limit")
)

// RemoteError is a non-2xx answer from the lookup backend
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("lookup backend returned %d: %s", e.StatusCode, e.Message)
}

// TransportError is a failure with no usable response
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsLocal reports whether err was raised by input validation
func IsLocal(err error) bool {
	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrInvalidSearch) ||
		errors.Is(err, ErrNoFile) ||
		errors.Is(err, ErrInvalidFileType) ||
		errors.Is(err, ErrFileTooLarge)
}
