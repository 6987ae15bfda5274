package domainerrors

import "errors"

// Code names a failure category independent of the transport that reports it.
// Callers branch on codes, never on message text.
type Code string

const (
	// CodeConfiguration marks a missing or invalid dependency at construction time.
	CodeConfiguration Code = "configuration_error"
	// CodeValidation marks bad enum values, missing fields or malformed payloads.
	CodeValidation Code = "validation_failed"
	// CodeNotFound marks an unknown policy, request, report or entry id.
	CodeNotFound Code = "not_found"
	// CodePartialFailure marks an operation that completed with per-unit failures.
	CodePartialFailure Code = "partial_failure"
	// CodeInvalidTransition marks an illegal lifecycle transition. No mutation happened.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeDisabled marks a component that is not accepting work.
	CodeDisabled Code = "disabled"
	// CodeConflict marks a write that lost a race with another writer.
	CodeConflict Code = "conflict"
	// CodeTimeout marks a context deadline or cancellation.
	CodeTimeout Code = "timeout"
	// CodeUnauthorized marks a request without a valid admin token.
	CodeUnauthorized Code = "unauthorized"
	// CodeInternal marks infrastructure failures (store, broker, encoding).
	CodeInternal Code = "internal_error"
)

// Error wraps domain or infrastructure failures with a stable code.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code so errors.Is(err, New(CodeNotFound, "")) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a domain error around err. If err already carries a domain code
// that code wins, so the outermost layer cannot hide a not-found or validation
// failure behind an internal error.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether err is a domain error carrying code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the domain code of err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
