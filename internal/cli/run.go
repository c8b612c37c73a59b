package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spetersoncode/triage"
	"github.com/spetersoncode/triage/internal/config"
	"github.com/spetersoncode/triage/internal/render"
	"github.com/spetersoncode/triage/pipeline"
	"github.com/spetersoncode/triage/store"
	"github.com/spetersoncode/triage/workflow"
)

func newRunCommand(app *App) *cobra.Command {
	d := config.Default()
	cmd := &cobra.Command{
		Use:   "run [issue-number...]",
		Short: "Triage one or more issues",
		Long: `Triage one or more issues: fetch each issue and the repository's labels,
ask the model which labels apply, and add them.

Without arguments the issue number is read from the GitHub Actions event
payload (GITHUB_EVENT_PATH).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTriage(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.Bool("apply", d.Apply, "add the recommended labels to the issue (--apply=false previews only)")
	flags.Bool("guard", d.Guard, "screen issue text for prompt injection before classifying")
	flags.Float64("guard-threshold", d.GuardThreshold, "injection confidence (0 to 1) at which issue text is rejected")
	flags.Int("concurrency", d.Concurrency, "number of issues triaged at once")
	flags.Float64("tracker-rps", d.TrackerRPS, "GitHub requests per second")
	flags.String("system-prompt-file", "", "file replacing the built-in system prompt (relative to GITHUB_WORKSPACE)")
	return cmd
}

func (a *App) runTriage(cmd *cobra.Command, args []string) error {
	cfg := a.Config
	if err := cfg.Validate(); err != nil {
		return err
	}
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	refs, err := a.issueReferences(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	reg, m, err := a.workflows(ctx)
	if err != nil {
		return err
	}
	id := pipeline.WorkflowID
	if !cfg.Apply {
		id = pipeline.PreviewWorkflowID
	}
	wf := reg.Get(id)

	history, err := store.Open(ctx, cfg.HistoryDSN)
	if err != nil {
		return err
	}
	defer history.Close()
	recorder := store.NewRecorder(history, a.Logger, pipeline.UsageAnnotator(m))

	outcomes := make([]render.Outcome, len(refs))
	outputs := make([]pipeline.Output, len(refs))
	errs := make([]error, len(refs))

	var g errgroup.Group
	g.SetLimit(cfg.Concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			log := a.Logger.With("issue", ref.String())
			log.Info(fmt.Sprintf("Triaging issue #%d in %s", ref.Number, ref.Repository()))

			out, res, err := pipeline.Triage(ctx, wf, ref,
				workflow.WithLogger(log),
				workflow.WithObserver(recorder),
			)
			outcome := render.Outcome{
				Issue:    ref.String(),
				RunID:    res.RunID,
				Status:   res.Status.String(),
				Duration: res.Duration(),
			}
			if classified, ok := res.Steps[pipeline.StepTriage].(pipeline.ClassifyOutput); ok {
				outcome.CostUSD = m.Cost(classified.Usage)
			}
			if err != nil {
				log.Error("triage failed", "error", err)
				outcome.Error = err.Error()
				errs[i] = err
			} else {
				log.Info(fmt.Sprintf("Successfully triaged issue #%d", ref.Number))
				log.Info("Recommended labels: " + strings.Join(triage.AssignmentNames(out.Labels), ", "))
				outcome.Output = &out
				outputs[i] = out
			}
			outcomes[i] = outcome
			return nil
		})
	}
	_ = g.Wait()

	if err := render.Outcomes(cmd.OutOrStdout(), format, outcomes); err != nil {
		return err
	}

	if len(refs) == 1 && errs[0] == nil && cfg.GitHubOutput != "" {
		if err := writeGitHubOutputs(cfg.GitHubOutput, refs[0], outputs[0]); err != nil {
			return err
		}
	}

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	switch {
	case failed == 0:
		return nil
	case len(refs) == 1:
		return NewExitError(1, fmt.Errorf("workflow failed: %w", errs[0]))
	default:
		return NewExitError(1, fmt.Errorf("%d of %d issues failed: %w", failed, len(refs), errors.Join(errs...)))
	}
}

// issueReferences resolves the repository and the issue numbers from args
// or the event payload.
func (a *App) issueReferences(args []string) ([]triage.IssueReference, error) {
	owner, repo, err := a.repository()
	if err != nil {
		return nil, err
	}

	var numbers []int
	for _, arg := range args {
		n, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
		if err != nil {
			return nil, fmt.Errorf("invalid issue number %q", arg)
		}
		numbers = append(numbers, n)
	}
	if len(numbers) == 0 {
		n, err := eventIssueNumber(a.Config.EventPath)
		if err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}

	refs := make([]triage.IssueReference, len(numbers))
	for i, n := range numbers {
		refs[i] = triage.IssueReference{Owner: owner, Repo: repo, Number: n}
		if err := refs[i].Validate(); err != nil {
			return nil, err
		}
	}
	return refs, nil
}
