// Package errors attaches machine-readable codes to failures so the CLI and
// UI can tell provider faults apart from bad input.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure.
type Code string

const (
	CodeUnknown  Code = "unknown"
	CodeNotFound Code = "not_found"

	// Provider
	CodeQueryFailed Code = "query_failed"
	CodeParseFailed Code = "parse_failed"

	// Hierarchy and visibility
	CodeInvalidGroupingNode Code = "invalid_grouping_node"
	CodeUnsupportedNode     Code = "unsupported_node"
	CodeViewportFailed      Code = "viewport_failed"

	CodeConfigurationError Code = "configuration_error"
)

// Error is a coded failure with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e Error) Error() string {
	switch {
	case e.Message == "" && e.Err == nil:
		return string(e.Code)
	case e.Message == "":
		return e.Err.Error()
	case e.Err == nil:
		return e.Message
	default:
		return e.Message + ": " + e.Err.Error()
	}
}

func (e Error) Unwrap() error {
	return e.Err
}

// New builds a coded error. err may be nil.
func New(code Code, msg string, err error) Error {
	return Error{Code: code, Message: msg, Err: err}
}

// Newf builds a coded error without a cause.
func Newf(code Code, format string, args ...any) error {
	return Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags err with code. A nil err stays nil so call sites can wrap
// unconditionally.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return Error{Code: code, Message: msg, Err: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the outermost code in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var coded Error
	if err == nil || !errors.As(err, &coded) {
		return CodeUnknown
	}
	return coded.Code
}

// IsCode reports whether CodeOf(err) is code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
