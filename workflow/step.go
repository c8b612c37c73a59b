package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
)

// StepID identifies a step within a workflow.
type StepID string

// RunMetadata describes the run a step executes in.
type RunMetadata struct {
	RunID      string
	WorkflowID string
	Position   int
	Logger     *slog.Logger
}

// Step is an atomic unit of work.
type Step interface {
	ID() StepID
	Description() string
	Execute(ctx context.Context, input any, meta RunMetadata) (any, error)
}

// Validator is implemented by step inputs and outputs that can check themselves.
type Validator interface {
	Validate() error
}

// StepFunc is the typed body of a step.
type StepFunc[I, O any] func(ctx context.Context, input I, meta RunMetadata) (O, error)

// StepOption configures a step built with NewStep.
type StepOption func(*stepConfig)

type stepConfig struct {
	description string
}

// WithDescription sets a human-readable description.
func WithDescription(d string) StepOption {
	return func(c *stepConfig) {
		c.description = d
	}
}

type typedStep[I, O any] struct {
	id   StepID
	desc string
	fn   StepFunc[I, O]
}

// NewStep creates a step from a typed function. The input is asserted to be
// an I and validated before fn runs; the output is validated after. Either
// side is validated only if it implements Validator.
func NewStep[I, O any](id StepID, fn StepFunc[I, O], opts ...StepOption) Step {
	if id == "" {
		panic("workflow: step id must not be empty")
	}
	if fn == nil {
		panic(fmt.Sprintf("workflow: step %q has nil function", id))
	}
	cfg := stepConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &typedStep[I, O]{id: id, desc: cfg.description, fn: fn}
}

func (s *typedStep[I, O]) ID() StepID          { return s.id }
func (s *typedStep[I, O]) Description() string { return s.desc }

func (s *typedStep[I, O]) Execute(ctx context.Context, input any, meta RunMetadata) (any, error) {
	in, err := cast[I](s.id, input)
	if err != nil {
		return nil, err
	}
	if err := validate(in); err != nil {
		return nil, &ValidationError{StepID: s.id, Boundary: BoundaryInput, Err: err}
	}

	out, err := s.fn(ctx, in, meta)
	if err != nil {
		return nil, err
	}
	if err := validate(out); err != nil {
		return nil, &ValidationError{StepID: s.id, Boundary: BoundaryOutput, Err: err}
	}
	return out, nil
}

// errNilValue rejects a nil pointer whose type declares a Validate method.
var errNilValue = errors.New("nil value")

func validate(v any) error {
	val, ok := v.(Validator)
	if !ok {
		return nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return errNilValue
	}
	return val.Validate()
}

// cast asserts v to T. A nil v is accepted as the zero value of nilable
// types (pointers, interfaces, slices and maps).
func cast[T any](id StepID, v any) (T, error) {
	if typed, ok := v.(T); ok {
		return typed, nil
	}
	var zero T
	t := reflect.TypeFor[T]()
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
			return zero, nil
		}
	}
	return zero, &TypeError{StepID: id, Expected: t.String(), Got: fmt.Sprintf("%T", v)}
}
