package internal

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline errors so they can be mapped to envelope codes.
type ErrorKind int

const (
	// KindServer covers storage failures, contract violations and anything uncategorized.
	KindServer ErrorKind = iota
	// KindClient covers missing or invalid input, deactivated actions and malformed payloads.
	KindClient
	// KindNotFound covers unknown services, unknown actions and missing records.
	KindNotFound
	// KindUnauthenticated is returned when an identity is required but absent.
	KindUnauthenticated
	// KindUnauthorized is returned when the identity lacks a required permission.
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindNotFound:
		return "not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "server"
	}
}

// Error is a business error surfaced to the client as a response envelope.
// It never changes the HTTP status; Code (or the code configured for Kind) ends up in the envelope.
type Error struct {
	// Err is the underlying cause, logged but never sent to the client.
	Err error

	// Message is the client-facing message.
	Message string

	Kind ErrorKind

	// Code overrides the code configured for Kind when non-zero.
	Code int
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorOption configures an Error.
type ErrorOption func(*Error)

// WithCause attaches the underlying error.
func WithCause(err error) ErrorOption {
	return func(e *Error) {
		e.Err = err
	}
}

// WithCode pins the envelope code regardless of the configured mapping.
func WithCode(code int) ErrorOption {
	return func(e *Error) {
		e.Code = code
	}
}

func newError(kind ErrorKind, message string, opts []ErrorOption) *Error {
	e := &Error{Kind: kind, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewError creates an application error carrying its own envelope code.
func NewError(code int, message string, opts ...ErrorOption) *Error {
	e := newError(KindServer, message, opts)
	e.Code = code
	return e
}

func ErrClient(message string, opts ...ErrorOption) *Error {
	return newError(KindClient, message, opts)
}

func ErrNotFound(message string, opts ...ErrorOption) *Error {
	return newError(KindNotFound, message, opts)
}

func ErrUnauthenticated(message string, opts ...ErrorOption) *Error {
	return newError(KindUnauthenticated, message, opts)
}

func ErrUnauthorized(message string, opts ...ErrorOption) *Error {
	return newError(KindUnauthorized, message, opts)
}

func ErrServer(message string, opts ...ErrorOption) *Error {
	return newError(KindServer, message, opts)
}

// ErrFieldRequired is the client error returned for a missing required payload field.
func ErrFieldRequired(field string) *Error {
	return ErrClient(fmt.Sprintf("Field %s is required", field))
}

// AsError extracts the pipeline Error from err, or returns nil.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IsError reports whether err is (or wraps) a pipeline Error of the given kind.
func IsError(err error, kind ErrorKind) bool {
	e := AsError(err)
	return e != nil && e.Kind == kind
}

// ErrorCodes maps error kinds to envelope codes.
// Codes are application codes, not HTTP statuses.
type ErrorCodes struct {
	Client          int `env:"PIONIA_CODE_CLIENT" envDefault:"404" yaml:"client"`
	NotFound        int `env:"PIONIA_CODE_NOT_FOUND" envDefault:"404" yaml:"not_found"`
	Unauthenticated int `env:"PIONIA_CODE_UNAUTHENTICATED" envDefault:"401" yaml:"unauthenticated"`
	Unauthorized    int `env:"PIONIA_CODE_UNAUTHORIZED" envDefault:"403" yaml:"unauthorized"`
	Server          int `env:"PIONIA_CODE_SERVER" envDefault:"500" yaml:"server"`
}

// DefaultErrorCodes returns the stock mapping.
func DefaultErrorCodes() ErrorCodes {
	return ErrorCodes{
		Client:          404,
		NotFound:        404,
		Unauthenticated: 401,
		Unauthorized:    403,
		Server:          500,
	}
}

// withDefaults fills zero codes from DefaultErrorCodes.
func (c ErrorCodes) withDefaults() ErrorCodes {
	d := DefaultErrorCodes()
	if c.Client == 0 {
		c.Client = d.Client
	}
	if c.NotFound == 0 {
		c.NotFound = d.NotFound
	}
	if c.Unauthenticated == 0 {
		c.Unauthenticated = d.Unauthenticated
	}
	if c.Unauthorized == 0 {
		c.Unauthorized = d.Unauthorized
	}
	if c.Server == 0 {
		c.Server = d.Server
	}
	return c
}

// Code returns the envelope code for kind.
func (c ErrorCodes) Code(kind ErrorKind) int {
	switch kind {
	case KindClient:
		return c.Client
	case KindNotFound:
		return c.NotFound
	case KindUnauthenticated:
		return c.Unauthenticated
	case KindUnauthorized:
		return c.Unauthorized
	default:
		return c.Server
	}
}

// internalErrorMessage replaces the text of errors that are not pipeline errors;
// callers log the cause.
const internalErrorMessage = "Internal server error"

// Envelope converts err into an error response.
// Pipeline errors keep their message and code; anything else becomes a server error
// with a fixed message.
func (c ErrorCodes) Envelope(err error) *Response {
	if e := AsError(err); e != nil {
		code := e.Code
		if code == 0 {
			code = c.Code(e.Kind)
		}
		return Fail(code, e.Message)
	}
	return Fail(c.Server, internalErrorMessage)
}
