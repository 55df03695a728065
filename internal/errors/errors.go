package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	// ErrConfig marks a broken view, data source or config reference that
	// cannot be skipped (unknown data source, unknown sorter in a view, ...).
	ErrConfig = "CONFIG"
	// ErrLookup marks a miss that callers usually treat as "feature absent".
	ErrLookup = "LOOKUP"
	// ErrBackend marks a Livestatus transport or protocol failure.
	ErrBackend = "BACKEND"
	// ErrRender marks a painter that failed while rendering a row.
	ErrRender = "RENDER"
	// ErrStore marks a failure of the persisted option store.
	ErrStore = "STORE"
	// ErrSSH marks SSH connection problems of ssh: sites.
	ErrSSH = "SSH"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Printed as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrBackend code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrBackend,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// UnknownID reports a reference to an identifier that is not registered,
// e.g. UnknownID("sorter", "svc_state_age").
func UnknownID(kind, id string) *Error {
	return &Error{
		Code:       ErrConfig,
		Message:    fmt.Sprintf("Unknown %s '%s'", kind, id),
		Suggestion: fmt.Sprintf("Check the view definition for a misspelled %s name", kind),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var lsErr *Error
	if errors.As(err, &lsErr) {
		return lsErr.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost structured error in the chain,
// or "" if there is none.
func CodeOf(err error) string {
	var lsErr *Error
	if errors.As(err, &lsErr) {
		return lsErr.Code
	}
	return ""
}
