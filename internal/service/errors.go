package service

import (
	"errors"
)

// Kind classifies a failure so the transport layer can pick a status without reading messages.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicateUser
	KindAuthentication
	KindAuthorization
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicateUser:
		return "duplicate_user"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	default:
		return "internal"
	}
}

// Error is a classified service failure. Message is safe to show to clients for every kind
// except KindInternal; Err carries the underlying cause for logs.
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

// Client-facing messages.
const (
	MsgFieldsRequired    = "username, email and password are required"
	MsgInvalidEmail      = "invalid email"
	MsgUsernameTaken     = "username already exists"
	MsgInvalidUsername   = "Invalid username"
	MsgIncorrectPassword = "Incorrect password"
	MsgUnauthorized      = "unauthorized"
	MsgInternal          = "internal server error"
)

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func internalError(op string, cause error) *Error {
	return newError(KindInternal, op, cause)
}

// KindOf reports the Kind of err; unclassified errors are KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
