// Package apperr is the error taxonomy shared by the engreader services.
// Callers branch on Kind; the CLI shows Public(err) to the user and logs
// the full chain.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	Generation
	Parse
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Generation:
		return "generation"
	case Parse:
		return "parse"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified error. Op names the failing operation
// ("story.Generate"), Msg is safe to show to a user, Err is the cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error.
func E(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// Validationf returns a Validation error with a formatted message.
func Validationf(op, format string, args ...any) *Error {
	return &Error{Kind: Validation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf returns a NotFound error with a formatted message.
func NotFoundf(op, format string, args ...any) *Error {
	return &Error{Kind: NotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the Kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err's chain holds an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	var e *Error
	for cur := err; errors.As(cur, &e); cur = e.Err {
		if e.Kind == kind {
			return true
		}
		if e.Err == nil {
			break
		}
	}
	return false
}

// Public returns a message suitable for end users. Internal and
// generation failures collapse to a generic sentence; validation style
// errors expose their Msg.
func Public(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return "An unexpected error occurred."
	}
	switch e.Kind {
	case Validation, NotFound, Conflict:
		if e.Msg != "" {
			return e.Msg
		}
		return e.Kind.String()
	case Generation:
		return "Content generation failed. Please try again."
	case Parse:
		return "The generated content could not be read."
	default:
		return "An unexpected error occurred."
	}
}
