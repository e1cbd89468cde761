package errors

import (
	stderrors "errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeNetwork          ErrorType = "NETWORK"
	ErrTypeAPI              ErrorType = "API"
	ErrTypeMalformedPayload ErrorType = "MALFORMED_PAYLOAD"
	ErrTypeInvalidInput     ErrorType = "INVALID_INPUT"
	ErrTypeUnavailable      ErrorType = "UNAVAILABLE"
)

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

// Network covers transport failures and non-success HTTP statuses.
func Network(message string, err error) *DomainError {
	return New(ErrTypeNetwork, message, err)
}

// API covers payloads that carry an explicit error field.
func API(message string, err error) *DomainError {
	return New(ErrTypeAPI, message, err)
}

// Malformed covers payloads that cannot be decoded or lack the expected keys.
func Malformed(message string, err error) *DomainError {
	return New(ErrTypeMalformedPayload, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

func Unavailable(message string, err error) *DomainError {
	return New(ErrTypeUnavailable, message, err)
}

// TypeOf returns the type of the first DomainError in the chain, or "" if there is none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Type
	}
	return ""
}

// IsType reports whether err wraps a DomainError of the given type.
func IsType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}
