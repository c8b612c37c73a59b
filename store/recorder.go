package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spetersoncode/triage/workflow"
)

// Annotator adds details to a record before it is saved.
type Annotator func(run *workflow.Run, rec *RunRecord)

// Recorder is a workflow.Observer that saves every finished run.
type Recorder struct {
	workflow.NoopObserver

	store    *Store
	annotate []Annotator
	logger   *slog.Logger
}

// NewRecorder returns a Recorder saving into s.
func NewRecorder(s *Store, logger *slog.Logger, annotate ...Annotator) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: s, annotate: annotate, logger: logger}
}

// OnRunFinish saves the run. Failures are logged; they never change the
// run's outcome.
func (r *Recorder) OnRunFinish(ctx context.Context, run *workflow.Run, res *workflow.Result) {
	input := run.Context().Input()
	rec, err := FromResult(res, subjectOf(input), input)
	if err != nil {
		r.logger.Warn("failed to encode run for history", "run_id", res.RunID, "error", err)
		return
	}
	for _, a := range r.annotate {
		a(run, &rec)
	}
	if err := r.store.Save(context.WithoutCancel(ctx), rec); err != nil {
		r.logger.Warn("failed to record run", "run_id", res.RunID, "error", err)
	}
}

func subjectOf(input any) string {
	if s, ok := input.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", input)
}
