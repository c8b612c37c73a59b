// Package workflow implements a small step-pipeline engine.
//
// A workflow is an ordered list of entries. Each entry is either a Step, an
// atomic unit of work with validated input and output, or a Mapping, a pure
// function that reshapes data already produced in the run into the next
// step's input. Workflows are built once and committed:
//
//	wf, err := workflow.NewBuilder("triage-issue").
//	    Then(fetchIssue).
//	    Map(workflow.NewMapping(func(rc *workflow.RunContext) (Owner, error) {
//	        issue, err := workflow.StepResult[Issue](rc, "fetch-issue")
//	        ...
//	    }, "fetch-issue")).
//	    Then(listLabels).
//	    Commit()
//
// A committed Workflow is immutable and may be shared by any number of
// concurrent runs. Each Run owns a RunContext holding the run input and
// every step result recorded so far. A recorded result is never replaced,
// and values read from it share memory with the record, so steps and
// mappings treat them as read-only.
//
// # Run lifecycle
//
//	pending -> running -> success | failed | suspended
//
// Entries execute strictly in order. The first error fails the run and no
// further entries execute; the engine never retries. A step may return
// Suspend(reason) to park the run in the suspended state.
//
// # Observability
//
// Runs report lifecycle events to an Observer. LoggingObserver writes them
// through log/slog:
//
//	res := wf.CreateRun(workflow.WithLogger(logger)).Start(ctx, input)
package workflow
