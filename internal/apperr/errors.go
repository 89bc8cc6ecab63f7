// Package apperr defines the error kinds shared by the ledger service. Kinds are
// translated to HTTP status codes only at the API boundary.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the caller
type Kind int

const (
	Internal             Kind = iota // Unclassified failure, usually storage
	InvalidCredentials               // Email/password rejected
	InvalidToken                     // Bearer token rejected
	Forbidden                        // Role check failed
	InvalidSignature                 // Payment signature mismatch
	DuplicateTransaction             // Transaction id already processed
	NotFound                         // Missing user, account or transaction collection
	Validation                       // Malformed or conflicting input
)

var kindNames = map[Kind]string{
	Internal:             "internal",
	InvalidCredentials:   "invalid_credentials",
	InvalidToken:         "invalid_token",
	Forbidden:            "forbidden",
	InvalidSignature:     "invalid_signature",
	DuplicateTransaction: "duplicate_transaction",
	NotFound:             "not_found",
	Validation:           "validation_error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error carries a Kind, a caller-facing message and an optional cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, apperr.ErrNotFound) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Kind sentinels for errors.Is
var (
	ErrInvalidCredentials   = &Error{Kind: InvalidCredentials}
	ErrInvalidToken         = &Error{Kind: InvalidToken}
	ErrForbidden            = &Error{Kind: Forbidden}
	ErrInvalidSignature     = &Error{Kind: InvalidSignature}
	ErrDuplicateTransaction = &Error{Kind: DuplicateTransaction}
	ErrNotFound             = &Error{Kind: NotFound}
	ErrValidation           = &Error{Kind: Validation}
)

// New builds an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an error of the given kind around a cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or Internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the caller-facing message of the first *Error in err's chain
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Internal server error"
}
