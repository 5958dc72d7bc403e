package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	ErrorKindConfiguration ErrorKind = iota
	ErrorKindExternal
	ErrorKindAssertion
	ErrorKindTimeout
	ErrorKindUnsupported
	ErrorKindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindConfiguration:
		return "configuration"
	case ErrorKindExternal:
		return "external"
	case ErrorKindAssertion:
		return "assertion"
	case ErrorKindTimeout:
		return "timeout"
	case ErrorKindUnsupported:
		return "unsupported"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewConfigurationError(msg string, details map[string]interface{}) *Error {
	return &Error{Kind: ErrorKindConfiguration, Message: msg, Details: details}
}

func NewExternalError(msg string, err error) *Error {
	return &Error{Kind: ErrorKindExternal, Message: msg, Err: err}
}

func NewAssertionError(msg string, failed []string) *Error {
	return &Error{
		Kind:    ErrorKindAssertion,
		Message: msg,
		Details: map[string]interface{}{"failed_assertions": failed},
	}
}

func NewTimeoutError(msg string) *Error {
	return &Error{Kind: ErrorKindTimeout, Message: msg}
}

func NewUnsupportedError(msg string, details map[string]interface{}) *Error {
	return &Error{Kind: ErrorKindUnsupported, Message: msg, Details: details}
}

func kindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func IsConfigurationError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindConfiguration
}

func IsExternalError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindExternal
}

func IsAssertionError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindAssertion
}

func IsTimeoutError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindTimeout
}

func IsUnsupportedError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindUnsupported
}

var (
	ErrNotFound          = errors.New("resource not found")
	ErrClosed            = errors.New("storage closed")
	ErrInvalidTransition = errors.New("invalid execution status transition")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
