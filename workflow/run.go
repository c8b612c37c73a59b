package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the state of a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusSuspended Status = "suspended"
)

func (s Status) String() string { return string(s) }

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusSuspended
}

// Result is the outcome of a run.
type Result struct {
	RunID      string
	WorkflowID string
	Status     Status
	// Output is the value produced by the last entry; set on success.
	Output any
	// Err is set when Status is failed or suspended.
	Err error
	// Steps holds the recorded step results keyed by step ID.
	Steps      map[StepID]any
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the run took.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Output returns the typed output of a successful run. Failed runs return
// their error; suspended runs return ErrUnexpectedSuspension, for callers
// whose workflows never suspend.
func Output[O any](res *Result) (O, error) {
	var zero O
	switch res.Status {
	case StatusSuccess:
	case StatusSuspended:
		return zero, fmt.Errorf("%w: %v", ErrUnexpectedSuspension, res.Err)
	default:
		if res.Err != nil {
			return zero, res.Err
		}
		return zero, fmt.Errorf("workflow: run %s ended with status %s", res.RunID, res.Status)
	}
	out, ok := res.Output.(O)
	if !ok {
		return zero, fmt.Errorf("workflow: run output is %T, not %T", res.Output, zero)
	}
	return out, nil
}

// RunOption configures a run.
type RunOption func(*Run)

// WithRunID overrides the generated run ID.
func WithRunID(id string) RunOption {
	return func(r *Run) {
		if id != "" {
			r.id = id
		}
	}
}

// WithObserver adds an observer.
func WithObserver(o Observer) RunOption {
	return func(r *Run) {
		r.observers = append(r.observers, o)
	}
}

// WithLogger sets the logger handed to steps and adds a LoggingObserver.
func WithLogger(l *slog.Logger) RunOption {
	return func(r *Run) {
		if l == nil {
			return
		}
		r.logger = l
		r.observers = append(r.observers, NewLoggingObserver(l))
	}
}

// Run is a single execution of a Workflow.
type Run struct {
	id        string
	wf        *Workflow
	logger    *slog.Logger
	observers []Observer
	observer  Observer

	mu     sync.Mutex
	status Status
	cursor int
	rc     *RunContext
}

// CreateRun creates a pending run of w.
func (w *Workflow) CreateRun(opts ...RunOption) *Run {
	r := &Run{
		id:     uuid.NewString(),
		wf:     w,
		logger: slog.Default(),
		status: StatusPending,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.observer = MultiObserver(r.observers...)
	return r
}

// ID returns the run ID.
func (r *Run) ID() string { return r.id }

// WorkflowID returns the ID of the workflow being run.
func (r *Run) WorkflowID() string { return r.wf.id }

// Status returns the current status.
func (r *Run) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Cursor returns the index of the next entry to execute.
func (r *Run) Cursor() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

// Context returns the run's RunContext, or nil before Start.
func (r *Run) Context() *RunContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rc
}

// Start executes the workflow with input and returns the result. A run can
// be started once; later calls return a failed result carrying
// ErrRunAlreadyStarted and leave the run untouched.
func (r *Run) Start(ctx context.Context, input any) *Result {
	started := time.Now()

	r.mu.Lock()
	if r.status != StatusPending {
		r.mu.Unlock()
		return &Result{
			RunID:      r.id,
			WorkflowID: r.wf.id,
			Status:     StatusFailed,
			Err:        ErrRunAlreadyStarted,
			StartedAt:  started,
			FinishedAt: time.Now(),
		}
	}
	r.status = StatusRunning
	r.rc = newRunContext(input)
	r.mu.Unlock()

	r.observer.OnRunStart(ctx, r)

	current := input
	for i, entry := range r.wf.entries {
		if err := ctx.Err(); err != nil {
			return r.finish(ctx, started, StatusFailed, nil, entryError(i, entry, err))
		}

		r.observer.OnEntryStart(ctx, r, i, entry)
		entryStart := time.Now()
		out, err := r.execute(ctx, i, entry, current)
		r.observer.OnEntryFinish(ctx, r, i, entry, err, time.Since(entryStart))

		if err != nil {
			var suspend *SuspendError
			if errors.As(err, &suspend) {
				return r.finish(ctx, started, StatusSuspended, nil, suspend)
			}
			return r.finish(ctx, started, StatusFailed, nil, entryError(i, entry, err))
		}

		current = out
		r.mu.Lock()
		r.cursor = i + 1
		r.mu.Unlock()
	}

	return r.finish(ctx, started, StatusSuccess, current, nil)
}

func (r *Run) execute(ctx context.Context, position int, entry Entry, input any) (any, error) {
	switch entry.Kind {
	case EntryStep:
		meta := RunMetadata{
			RunID:      r.id,
			WorkflowID: r.wf.id,
			Position:   position,
			Logger:     r.logger.With("run_id", r.id, "step", string(entry.Step.ID())),
		}
		out, err := entry.Step.Execute(ctx, input, meta)
		if err != nil {
			return nil, err
		}
		if err := r.rc.record(position, entry.Step.ID(), out); err != nil {
			return nil, err
		}
		return out, nil
	case EntryMapping:
		return entry.Mapping.Transform(r.rc)
	default:
		return nil, fmt.Errorf("workflow: unknown entry kind %v", entry.Kind)
	}
}

func (r *Run) finish(ctx context.Context, started time.Time, status Status, output any, err error) *Result {
	r.mu.Lock()
	r.status = status
	r.mu.Unlock()

	res := &Result{
		RunID:      r.id,
		WorkflowID: r.wf.id,
		Status:     status,
		Output:     output,
		Err:        err,
		Steps:      r.rc.Results(),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	r.observer.OnRunFinish(ctx, r, res)
	return res
}

func entryError(position int, entry Entry, err error) *StepError {
	se := &StepError{Position: position, Kind: entry.Kind, Err: err}
	if entry.Kind == EntryStep {
		se.StepID = entry.Step.ID()
	}
	return se
}
