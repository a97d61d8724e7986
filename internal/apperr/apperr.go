// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package apperr defines the error taxonomy shared by every citemap
// component. Data-quality failures (malformed records, failed lookups) are
// absorbed where they happen; only invalid parameters and total source
// exhaustion are returned to callers.
package apperr

import (
	"errors"
	"fmt"
)

// Code classifies a failure.
type Code string

const (
	// CodeMalformedRecord marks a payload with neither title nor identifier.
	CodeMalformedRecord Code = "malformed_record"

	// CodeLookupUnavailable marks a failed or timed-out enrichment lookup.
	CodeLookupUnavailable Code = "lookup_unavailable"

	// CodeSourceUnavailable marks a source whose fetch failed.
	CodeSourceUnavailable Code = "source_unavailable"

	// CodeNoEligibleResults marks a source that returned nothing rankable.
	CodeNoEligibleResults Code = "no_eligible_results"

	// CodeInvalidQueryParameters marks caller input that cannot be served.
	CodeInvalidQueryParameters Code = "invalid_query_parameters"
)

// Error carries a Code alongside the message and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause so errors.Is and errors.As work.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error without a cause.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches code and message to err. A nil err yields nil.
func Wrap(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// IsCode reports whether any error in err's chain carries code.
func IsCode(err error, code Code) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// CodeOf returns the outermost Code in err's chain, or "" when none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
