package compose

import (
	stderrors "errors"
	"fmt"

	"github.com/flox/flox-sub009/pkg/errors"
)

// ConflictKind distinguishes the two fatal collisions
type ConflictKind int

const (
	// PriorityConflict: two owners claim the same file at the same rank
	PriorityConflict ConflictKind = iota
	// TypeConflict: a file and a directory are claimed at the same path
	TypeConflict
)

func (k ConflictKind) String() string {
	if k == TypeConflict {
		return "type"
	}
	return "priority"
}

// ConflictRecord identifies an unresolved collision
type ConflictRecord struct {
	// Path is relative to the destination root, slash separated
	Path string
	// Existing is the absolute source path already linked at Path
	Existing string
	// Incoming is the absolute source path that collided with it
	Incoming string
	// Rank is the rank of the incoming contribution, which for priority
	// conflicts is shared by both
	Rank int
	// ExistingRoot and IncomingRoot are the package roots the two sources
	// were linked from
	ExistingRoot string
	IncomingRoot string
}

// ConflictError aborts a composition
type ConflictError struct {
	Kind   ConflictKind
	Record ConflictRecord
}

func (e *ConflictError) Error() string {
	if e.Kind == TypeConflict {
		return fmt.Sprintf("collision between directory and non-directory at '%s': '%s' and '%s'",
			e.Record.Path, e.Record.Existing, e.Record.Incoming)
	}
	return fmt.Sprintf("conflict between '%s' and '%s' at '%s' with priority %d",
		e.Record.Existing, e.Record.Incoming, e.Record.Path, e.Record.Rank)
}

// ErrorCode implements errors.Coder
func (e *ConflictError) ErrorCode() errors.ErrorCode {
	if e.Kind == TypeConflict {
		return errors.ErrTypeConflict
	}
	return errors.ErrPriorityConflict
}

// AsConflict returns the conflict in err's chain, if any
func AsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	if stderrors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
