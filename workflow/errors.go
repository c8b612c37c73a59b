package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingStepResult indicates a mapping read a step that has not run.
	ErrMissingStepResult = errors.New("workflow: missing step result")

	// ErrDuplicateResult indicates a second value was recorded for one entry.
	ErrDuplicateResult = errors.New("workflow: duplicate step result")

	// ErrRunAlreadyStarted indicates Start was called on a run that is not pending.
	ErrRunAlreadyStarted = errors.New("workflow: run already started")

	// ErrEmptyWorkflow indicates Commit was called with no entries.
	ErrEmptyWorkflow = errors.New("workflow: no entries")

	// ErrBuilderCommitted indicates a builder was used after Commit.
	ErrBuilderCommitted = errors.New("workflow: builder already committed")

	// ErrUnexpectedSuspension is reported by callers whose workflow never
	// suspends but observed a suspended run.
	ErrUnexpectedSuspension = errors.New("workflow was suspended unexpectedly")
)

// StepError wraps the error that failed a run at a given entry. StepID is
// empty when the failing entry is a mapping.
type StepError struct {
	Position int
	Kind     EntryKind
	StepID   StepID
	Err      error
}

func (e *StepError) Error() string {
	if e.Kind == EntryMapping {
		return fmt.Sprintf("workflow: mapping (entry %d) failed: %v", e.Position, e.Err)
	}
	return fmt.Sprintf("workflow: step %q (entry %d) failed: %v", e.StepID, e.Position, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Boundary identifies which side of a step failed validation.
type Boundary string

const (
	BoundaryInput  Boundary = "input"
	BoundaryOutput Boundary = "output"
)

// ValidationError reports a step input or output that failed its schema.
type ValidationError struct {
	StepID   StepID
	Boundary Boundary
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("workflow: step %q: invalid %s: %v", e.StepID, e.Boundary, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TypeError reports a value that does not have the type a step or mapping expects.
type TypeError struct {
	StepID   StepID
	Expected string
	Got      string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("workflow: step %q: expected %s, got %s", e.StepID, e.Expected, e.Got)
}

// DependencyError is returned by Commit when a mapping requires a step that
// no earlier entry provides.
type DependencyError struct {
	Position int
	Missing  []StepID
}

func (e *DependencyError) Error() string {
	names := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		names[i] = string(id)
	}
	return fmt.Sprintf("workflow: mapping at entry %d requires steps not run before it: %s",
		e.Position, strings.Join(names, ", "))
}

// SuspendError is returned by a step to park the run.
type SuspendError struct {
	Reason string
}

func (e *SuspendError) Error() string {
	if e.Reason == "" {
		return "workflow: run suspended"
	}
	return "workflow: run suspended: " + e.Reason
}

// Suspend returns an error that moves the run to StatusSuspended.
func Suspend(reason string) error {
	return &SuspendError{Reason: reason}
}
