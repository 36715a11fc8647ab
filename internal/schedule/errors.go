package schedule

import (
	"errors"
	"fmt"
)

// ErrInvertedRange is a configuration error: the target range ends before
// it starts. Nothing is scheduled.
var ErrInvertedRange = errors.New("schedule: target range end is before range start")

// UnresolvedConstraintError is raised when a constraint cannot be resolved
// against the already-placed events or the availability calendar. For a
// relative constraint this means its referent was never scheduled (a
// forward or cyclic reference); the run aborts rather than guessing an
// ordering fix.
type UnresolvedConstraintError struct {
	// Event is the summary of the constrained event.
	Event string
	// Reference describes what could not be resolved: the referent's
	// summary fragment, or a week/day pair with no matching working day.
	Reference string
}

func (e *UnresolvedConstraintError) Error() string {
	return fmt.Sprintf("schedule: constraint on %q cannot be resolved: %s", e.Event, e.Reference)
}
