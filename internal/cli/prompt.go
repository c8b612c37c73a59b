package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/triage/pipeline"
)

func newPromptCommand(app *App) *cobra.Command {
	var system bool

	cmd := &cobra.Command{
		Use:   "prompt <issue-number>",
		Short: "Print the prompt the model would receive for an issue",
		Long: `Fetch an issue and the repository's labels and print the rendered triage
prompt without calling a model. With --system the system prompt is printed
first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := app.issueReferences(args)
			if err != nil {
				return err
			}
			ref := refs[0]

			tr, err := app.NewTracker(app.Config, app.Logger)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			issue, err := tr.GetIssue(ctx, ref)
			if err != nil {
				return fmt.Errorf("failed to fetch issue %s: %w", ref, err)
			}
			labels, err := tr.ListLabels(ctx, ref.Owner, ref.Repo)
			if err != nil {
				return fmt.Errorf("failed to fetch labels from %s: %w", ref.Repository(), err)
			}

			out := cmd.OutOrStdout()
			if system {
				sp, err := app.Config.SystemPrompt(pipeline.DefaultSystemPrompt)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n\n---\n\n", sp)
			}
			_, err = fmt.Fprintln(out, pipeline.BuildTriagePrompt(issue, labels))
			return err
		},
	}
	cmd.Flags().BoolVar(&system, "system", false, "also print the system prompt")
	cmd.Flags().String("system-prompt-file", "", "file replacing the built-in system prompt (relative to GITHUB_WORKSPACE)")
	return cmd
}
