// Package domainerrors defines the closed error enumeration shared by the
// registry and its callers. Codes map one-to-one onto the error kinds of
// the hosting ledger so external collaborators can keep branching on error
// identity; Int exposes the ledger's stable numbering.
package domainerrors

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeUnauthorized         Code = "unauthorized"
	CodeAlreadyRegistered    Code = "already_registered"
	CodeInvalidDetails       Code = "invalid_details"
	CodeNotFound             Code = "not_found"
	CodeInvalidCertification Code = "invalid_certification" // reserved, unused by current operations
	CodeMaxCollaborators     Code = "max_collaborators"     // reserved
	CodeInvalidPercentage    Code = "invalid_percentage"
	CodePaused               Code = "paused"

	// CodeInternal covers infrastructure failures (store, cache, broker).
	// It has no ledger numbering; callers treat it as retryable.
	CodeInternal Code = "internal"
)

var codeNumbers = map[Code]int{
	CodeUnauthorized:         1,
	CodeAlreadyRegistered:    2,
	CodeInvalidDetails:       3,
	CodeNotFound:             4,
	CodeInvalidCertification: 5,
	CodeMaxCollaborators:     6,
	CodeInvalidPercentage:    7,
	CodePaused:               8,
}

// Int returns the stable ledger number for the code, or -1 for codes that
// exist only in this process (internal failures).
func (c Code) Int() int {
	if n, ok := codeNumbers[c]; ok {
		return n
	}
	return -1
}

// Error is a domain error carrying a stable code. Services construct these
// at the boundary where a sentinel or validation failure becomes a caller
// visible outcome.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is lets errors.Is match two domain errors by identity (code and
// message), so tests and callers can compare against a constructed
// expectation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			return false
		}
	}
	return false
}

// CodeOf returns the code of the outermost domain error, or CodeInternal
// when err carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-facing message of the outermost domain
// error, or a generic message for uncoded errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}
