package redux

import (
	"errors"
	"fmt"
)

// CallbackError reports a callback that could not be resolved to an action.
//
// Resolution failures mean serialized data and the running binary disagree
// about which callbacks exist, so DispatchCallback treats them as fatal.
type CallbackError struct {
	// Code identifies the error category.
	Code CallbackErrorCode

	// Name is the callback's stable name.
	Name string

	// Message is a human-readable description.
	Message string
}

// CallbackErrorCode categorizes callback errors.
type CallbackErrorCode string

const (
	// ErrCodeCallbackNotFound indicates no live function and no registry entry.
	ErrCodeCallbackNotFound CallbackErrorCode = "CALLBACK_NOT_FOUND"

	// ErrCodeCallbackArgMismatch indicates the registered function expects a
	// different argument type.
	ErrCodeCallbackArgMismatch CallbackErrorCode = "CALLBACK_ARG_MISMATCH"

	// ErrCodeCallbackDuplicate indicates a name was registered twice.
	ErrCodeCallbackDuplicate CallbackErrorCode = "CALLBACK_DUPLICATE"

	// ErrCodeCallbackInvalid indicates an empty name or nil function.
	ErrCodeCallbackInvalid CallbackErrorCode = "CALLBACK_INVALID"
)

func (e *CallbackError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (callback=%s)", e.Code, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCallbackError reports whether err is a CallbackError, with any code.
func IsCallbackError(err error) bool {
	var ce *CallbackError
	return errors.As(err, &ce)
}

// IsCallbackNotFound reports whether err is a CallbackError for a missing name.
func IsCallbackNotFound(err error) bool {
	var ce *CallbackError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeCallbackNotFound
	}
	return false
}

func newCallbackNotFound(name string) *CallbackError {
	return &CallbackError{
		Code:    ErrCodeCallbackNotFound,
		Name:    name,
		Message: "no live function and no registry entry",
	}
}

func newCallbackArgMismatch(name, want string, got any) *CallbackError {
	return &CallbackError{
		Code:    ErrCodeCallbackArgMismatch,
		Name:    name,
		Message: fmt.Sprintf("argument type %T, expected %s", got, want),
	}
}

func newCallbackDuplicate(name string) *CallbackError {
	return &CallbackError{
		Code:    ErrCodeCallbackDuplicate,
		Name:    name,
		Message: "name already registered",
	}
}
