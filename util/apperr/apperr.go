// Package apperr carries typed business errors across service boundaries.
// Controllers translate kinds to HTTP status codes.
package apperr

import "errors"

type Kind string

const (
	KindNotFound Kind = "NOT_FOUND"
	KindConflict Kind = "CONFLICT"
	KindBadInput Kind = "BAD_INPUT"
)

type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Kind() Kind    { return e.kind }

func NotFound(msg string) error { return &Error{kind: KindNotFound, msg: msg} }
func Conflict(msg string) error { return &Error{kind: KindConflict, msg: msg} }
func BadInput(msg string) error { return &Error{kind: KindBadInput, msg: msg} }

// KindOf extracts the kind, or "" for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return ""
}
