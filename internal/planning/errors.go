package planning

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed planning operation. Transports map each kind
// to their own status codes.
type ErrorKind int

const (
	// KindInternal covers storage and other infrastructure failures.
	KindInternal ErrorKind = iota
	NotFound
	InvalidArgument
	DuplicateEdge
	CrossProjectViolation
	CycleViolation
)

func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case InvalidArgument:
		return "invalid_argument"
	case DuplicateEdge:
		return "duplicate_edge"
	case CrossProjectViolation:
		return "cross_project_violation"
	case CycleViolation:
		return "cycle_violation"
	}
	return "internal"
}

// Error is returned by Service for every request-level failure.
type Error struct {
	Kind    ErrorKind
	Message string
	// Cycle is the path the rejected edge would have closed, set for
	// CycleViolation only.
	Cycle []string
	Err   error
}

func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Cycle, " -> "))
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// lookupError converts a storage lookup failure into NotFound when nothing
// matched and leaves other failures as they are.
func lookupError(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Kind: NotFound, Message: fmt.Sprintf("%s %s not found", what, id), Err: err}
	}
	return fmt.Errorf("get %s %s: %w", what, id, err)
}
