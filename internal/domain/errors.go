package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures that reach the caller of an analysis.
type ErrorKind string

const (
	// KindConfig marks a malformed or missing rule set. Fatal at startup.
	KindConfig ErrorKind = "config"
	// KindAnalysis marks a category with no rules. Fatal for the request.
	KindAnalysis ErrorKind = "analysis"
	// KindTimeout marks a request that exceeded its budget.
	KindTimeout ErrorKind = "timeout"
	// KindFetch marks a repository that could not be materialized.
	KindFetch ErrorKind = "fetch"
	// KindInput marks an unreadable or unsupported upload, or a repository
	// reference the caller may not use.
	KindInput ErrorKind = "input"
	// KindCanceled marks a request abandoned by its caller.
	KindCanceled ErrorKind = "canceled"
)

// ErrUnsupportedFile is wrapped by input errors for uploads whose format
// cannot be turned into text.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Error is a classified failure. Op names the failing step.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a classified error from a format string.
func Errorf(kind ErrorKind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// WrapError classifies err. A nil err stays nil.
func WrapError(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first classified error in err's chain, or
// "" when err is unclassified.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
