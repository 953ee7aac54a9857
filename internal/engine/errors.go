package engine

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes engine failures. Every code is recoverable at the
// call boundary: the caller re-resolves and re-renders, the engine never
// repairs or retries on its own.
type ErrorCode string

const (
	// CodeInvalidTransition means the operation is not legal from the
	// current day state.
	CodeInvalidTransition ErrorCode = "invalid_transition"

	// CodeInvalidOption means a reschedule or shorten argument is malformed.
	CodeInvalidOption ErrorCode = "invalid_option"

	// CodeInvalidSlot means a candidate slot has a non-positive duration or
	// crosses midnight.
	CodeInvalidSlot ErrorCode = "invalid_slot"

	// CodeNotFound means there is no active recommendation to act on.
	CodeNotFound ErrorCode = "not_found"
)

// Error is a structured engine failure scoped to a single (user, day)
// resolution attempt.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the engine error code, or "" for non-engine errors.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsInvalidTransition reports whether err is an invalid-transition failure.
func IsInvalidTransition(err error) bool { return CodeOf(err) == CodeInvalidTransition }

// IsInvalidOption reports whether err is a malformed-argument failure.
func IsInvalidOption(err error) bool { return CodeOf(err) == CodeInvalidOption }

// IsInvalidSlot reports whether err is a malformed-slot failure.
func IsInvalidSlot(err error) bool { return CodeOf(err) == CodeInvalidSlot }

// IsNotFound reports whether err is a missing-recommendation failure.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

func errInvalidTransition(format string, args ...any) error {
	return &Error{Code: CodeInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func errInvalidOption(format string, args ...any) error {
	return &Error{Code: CodeInvalidOption, Message: fmt.Sprintf(format, args...)}
}

func errInvalidSlot(format string, args ...any) error {
	return &Error{Code: CodeInvalidSlot, Message: fmt.Sprintf(format, args...)}
}

func errNotFound(format string, args ...any) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}
