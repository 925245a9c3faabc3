package imaging

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures.
type Kind string

const (
	KindDecode      Kind = "decode"
	KindFetch       Kind = "fetch"
	KindEncode      Kind = "encode"
	KindUnsupported Kind = "unsupported"
)

// Error is the error type returned by pipeline operations.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Sentinels for errors.Is. Any *Error matches the sentinel of its Kind.
var (
	ErrDecode      = &Error{Kind: KindDecode}
	ErrFetch       = &Error{Kind: KindFetch}
	ErrEncode      = &Error{Kind: KindEncode}
	ErrUnsupported = &Error{Kind: KindUnsupported}
)

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return fmt.Sprintf("image %s error", e.Kind)
	case e.Err == nil:
		return fmt.Sprintf("%s: image %s error", e.Op, e.Kind)
	case e.Op == "":
		return e.Err.Error()
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// newError wraps err with kind unless it already carries one.
func newError(kind Kind, op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
