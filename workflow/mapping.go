package workflow

import (
	"fmt"
	"reflect"
)

// Mapping reshapes data already in the run into the next entry's input.
// Mappings are synchronous and must not mutate the RunContext.
type Mapping interface {
	// Requires lists the steps whose results Transform reads.
	Requires() []StepID
	Transform(rc *RunContext) (any, error)
}

type funcMapping[O any] struct {
	requires []StepID
	fn       func(*RunContext) (O, error)
}

// NewMapping creates a mapping from fn. The steps it reads must be listed in
// requires so Commit can check that they run before it.
func NewMapping[O any](fn func(rc *RunContext) (O, error), requires ...StepID) Mapping {
	if fn == nil {
		panic("workflow: mapping function must not be nil")
	}
	return &funcMapping[O]{requires: requires, fn: fn}
}

func (m *funcMapping[O]) Requires() []StepID {
	out := make([]StepID, len(m.requires))
	copy(out, m.requires)
	return out
}

func (m *funcMapping[O]) Transform(rc *RunContext) (any, error) {
	return m.fn(rc)
}

// StepResult returns the typed output of a prior step. It fails with
// ErrMissingStepResult if the step has not run, and never substitutes a
// default value. The result shares memory with the recorded value.
func StepResult[O any](rc *RunContext, id StepID) (O, error) {
	var zero O
	v, ok := rc.Result(id)
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrMissingStepResult, id)
	}
	typed, ok := v.(O)
	if !ok {
		return zero, &TypeError{StepID: id, Expected: reflect.TypeFor[O]().String(), Got: fmt.Sprintf("%T", v)}
	}
	return typed, nil
}

// InitData returns the typed run input.
func InitData[I any](rc *RunContext) (I, error) {
	return cast[I]("init", rc.Input())
}
