package workflow

import (
	"fmt"
	"maps"
)

// RunContext holds the input of one run and every step result recorded so
// far. It grows monotonically and is owned by exactly one run.
//
// Results are addressed by step ID. When a workflow contains the same step
// ID more than once, the ID resolves to the first occurrence and later
// occurrences are reachable only through ResultAt.
//
// Recorded values are stored as returned by the step, not copied. Values
// read back through Result, ResultAt or StepResult share memory with the
// record and must be treated as read-only; copy slices and maps before
// changing them.
type RunContext struct {
	input      any
	byID       map[StepID]any
	byPosition map[int]any
	order      []StepID
}

func newRunContext(input any) *RunContext {
	return &RunContext{
		input:      input,
		byID:       make(map[StepID]any),
		byPosition: make(map[int]any),
	}
}

// Input returns the value the run was started with.
func (rc *RunContext) Input() any { return rc.input }

// Result returns the recorded output of step id.
func (rc *RunContext) Result(id StepID) (any, bool) {
	v, ok := rc.byID[id]
	return v, ok
}

// ResultAt returns the output recorded by the step entry at position.
func (rc *RunContext) ResultAt(position int) (any, bool) {
	v, ok := rc.byPosition[position]
	return v, ok
}

// Executed returns step IDs in the order their results were recorded.
func (rc *RunContext) Executed() []StepID {
	out := make([]StepID, len(rc.order))
	copy(out, rc.order)
	return out
}

// Results returns a copy of the results keyed by step ID.
func (rc *RunContext) Results() map[StepID]any {
	return maps.Clone(rc.byID)
}

func (rc *RunContext) record(position int, id StepID, v any) error {
	if _, dup := rc.byPosition[position]; dup {
		return fmt.Errorf("%w: %q at entry %d", ErrDuplicateResult, id, position)
	}
	rc.byPosition[position] = v
	if _, seen := rc.byID[id]; !seen {
		rc.byID[id] = v
	}
	rc.order = append(rc.order, id)
	return nil
}
