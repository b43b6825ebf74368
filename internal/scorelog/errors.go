package scorelog

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Use errors.Is against these; the typed errors below carry
// the path and cause.
var (
	ErrMissingSource   = errors.New("missing source")
	ErrMalformedSource = errors.New("malformed source")
)

// MissingSourceError reports that the input table could not be located or opened.
type MissingSourceError struct {
	Path string
	Err  error
}

func (e *MissingSourceError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrMissingSource, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", ErrMissingSource, e.Path, e.Err)
}

func (e *MissingSourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMissingSource}
	}
	return []error{ErrMissingSource, e.Err}
}

// MalformedSourceError reports that the input table has no usable score columns.
type MalformedSourceError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedSourceError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s: %s", ErrMalformedSource, e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedSourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedSource}
	}
	return []error{ErrMalformedSource, e.Err}
}

func malformed(path, reason string, err error) error {
	return &MalformedSourceError{Path: path, Reason: reason, Err: err}
}
