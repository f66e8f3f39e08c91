package negotiation

import (
	"errors"
	"fmt"
)

// Reason classifies expected domain failures. These are first-class
// outcomes, returned to callers as typed errors rather than faults.
type Reason string

const (
	ReasonNotFound   Reason = "NOT_FOUND"
	ReasonConflict   Reason = "CONFLICT"
	ReasonBadRequest Reason = "BAD_REQUEST"
	ReasonFatal      Reason = "FATAL"
	ReasonTransient  Reason = "TRANSIENT"
)

// Error is a domain failure carrying a reason code.
type Error struct {
	Reason Reason
	msg    string
}

func (e *Error) Error() string {
	return string(e.Reason) + ": " + e.msg
}

func NotFound(format string, args ...any) *Error {
	return &Error{Reason: ReasonNotFound, msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Reason: ReasonConflict, msg: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *Error {
	return &Error{Reason: ReasonBadRequest, msg: fmt.Sprintf(format, args...)}
}

func Fatal(format string, args ...any) *Error {
	return &Error{Reason: ReasonFatal, msg: fmt.Sprintf(format, args...)}
}

func Transient(format string, args ...any) *Error {
	return &Error{Reason: ReasonTransient, msg: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the reason code from an error chain. Errors without a
// domain reason are classified TRANSIENT: unclassified infrastructure
// failures are retried, never persisted as fatal.
func ReasonOf(err error) Reason {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return ReasonTransient
}

func IsNotFound(err error) bool   { return ReasonOf(err) == ReasonNotFound }
func IsConflict(err error) bool   { return ReasonOf(err) == ReasonConflict }
func IsBadRequest(err error) bool { return ReasonOf(err) == ReasonBadRequest }
func IsFatal(err error) bool      { return ReasonOf(err) == ReasonFatal }
