package workflow

import (
	"context"
	"log/slog"
	"time"
)

// Observer receives run lifecycle callbacks. Implementations must be fast;
// they are called synchronously from the run.
type Observer interface {
	OnRunStart(ctx context.Context, run *Run)
	OnEntryStart(ctx context.Context, run *Run, position int, entry Entry)
	OnEntryFinish(ctx context.Context, run *Run, position int, entry Entry, err error, d time.Duration)
	OnRunFinish(ctx context.Context, run *Run, res *Result)
}

// NoopObserver does nothing.
type NoopObserver struct{}

func (NoopObserver) OnRunStart(context.Context, *Run)                                      {}
func (NoopObserver) OnEntryStart(context.Context, *Run, int, Entry)                        {}
func (NoopObserver) OnEntryFinish(context.Context, *Run, int, Entry, error, time.Duration) {}
func (NoopObserver) OnRunFinish(context.Context, *Run, *Result)                            {}

type multiObserver []Observer

// MultiObserver fans callbacks out to each non-nil observer.
func MultiObserver(obs ...Observer) Observer {
	var filtered multiObserver
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	switch len(filtered) {
	case 0:
		return NoopObserver{}
	case 1:
		return filtered[0]
	}
	return filtered
}

func (m multiObserver) OnRunStart(ctx context.Context, run *Run) {
	for _, o := range m {
		o.OnRunStart(ctx, run)
	}
}

func (m multiObserver) OnEntryStart(ctx context.Context, run *Run, position int, entry Entry) {
	for _, o := range m {
		o.OnEntryStart(ctx, run, position, entry)
	}
}

func (m multiObserver) OnEntryFinish(ctx context.Context, run *Run, position int, entry Entry, err error, d time.Duration) {
	for _, o := range m {
		o.OnEntryFinish(ctx, run, position, entry, err, d)
	}
}

func (m multiObserver) OnRunFinish(ctx context.Context, run *Run, res *Result) {
	for _, o := range m {
		o.OnRunFinish(ctx, run, res)
	}
}

// LoggingObserver logs run and entry lifecycle events via slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver returns a LoggingObserver; a nil logger uses slog.Default().
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnRunStart(ctx context.Context, run *Run) {
	o.Logger.InfoContext(ctx, "run started",
		slog.String("workflow", run.WorkflowID()),
		slog.String("run_id", run.ID()),
	)
}

func (o *LoggingObserver) OnEntryStart(ctx context.Context, run *Run, position int, entry Entry) {
	o.Logger.DebugContext(ctx, "entry started",
		slog.String("run_id", run.ID()),
		slog.Int("position", position),
		slog.String("kind", entry.Kind.String()),
		slog.String("entry", entry.Label()),
	)
}

func (o *LoggingObserver) OnEntryFinish(ctx context.Context, run *Run, position int, entry Entry, err error, d time.Duration) {
	attrs := []any{
		slog.String("run_id", run.ID()),
		slog.Int("position", position),
		slog.String("kind", entry.Kind.String()),
		slog.String("entry", entry.Label()),
		slog.Duration("duration", d),
	}
	if err != nil {
		o.Logger.WarnContext(ctx, "entry failed", append(attrs, slog.Any("error", err))...)
		return
	}
	o.Logger.DebugContext(ctx, "entry finished", attrs...)
}

func (o *LoggingObserver) OnRunFinish(ctx context.Context, run *Run, res *Result) {
	attrs := []any{
		slog.String("workflow", res.WorkflowID),
		slog.String("run_id", res.RunID),
		slog.String("status", res.Status.String()),
		slog.Duration("duration", res.Duration()),
	}
	switch res.Status {
	case StatusFailed:
		o.Logger.ErrorContext(ctx, "run failed", append(attrs, slog.Any("error", res.Err))...)
	case StatusSuspended:
		o.Logger.WarnContext(ctx, "run suspended", append(attrs, slog.Any("reason", res.Err))...)
	default:
		o.Logger.InfoContext(ctx, "run finished", attrs...)
	}
}

var (
	_ Observer = NoopObserver{}
	_ Observer = (*LoggingObserver)(nil)
	_ Observer = multiObserver(nil)
)
