package models

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidState     ErrorCode = "INVALID_STATE_TRANSITION"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	ErrCodeAlreadySelected  ErrorCode = "ALREADY_SELECTED"
	ErrCodeAlreadyLinked    ErrorCode = "ALREADY_LINKED"
	ErrCodeAccessDenied     ErrorCode = "ACCESS_DENIED"
	ErrCodePreconditionFail ErrorCode = "PRECONDITION_FAILED"
)

// Error is an expected, recoverable failure carrying a stable
// machine-readable code next to the human message. Infrastructure
// failures are plain errors and never use this type.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...interface{}) *Error {
	return NewError(ErrCodeValidation, format, args...)
}

func InvalidStateTransition(format string, args ...interface{}) *Error {
	return NewError(ErrCodeInvalidState, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return NewError(ErrCodeNotFound, format, args...)
}

func AlreadyExists(format string, args ...interface{}) *Error {
	return NewError(ErrCodeAlreadyExists, format, args...)
}

func AlreadySelected(format string, args ...interface{}) *Error {
	return NewError(ErrCodeAlreadySelected, format, args...)
}

func AlreadyLinked(format string, args ...interface{}) *Error {
	return NewError(ErrCodeAlreadyLinked, format, args...)
}

func AccessDenied(format string, args ...interface{}) *Error {
	return NewError(ErrCodeAccessDenied, format, args...)
}

func PreconditionFailed(format string, args ...interface{}) *Error {
	return NewError(ErrCodePreconditionFail, format, args...)
}

// AsError unwraps err into *Error when it belongs to the taxonomy.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
