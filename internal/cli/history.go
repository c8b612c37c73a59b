package cli

import (
	"github.com/spf13/cobra"

	"github.com/spetersoncode/triage/internal/render"
	"github.com/spetersoncode/triage/store"
)

func newHistoryCommand(app *App) *cobra.Command {
	var opts store.ListOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded triage runs",
		Long: `List recorded triage runs, most recent first.

History is kept in the database named by --history-db; the default
in-memory database only lives for one process, so point it at a file to
keep runs between invocations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(app.Config.Format)
			if err != nil {
				return err
			}
			history, err := store.Open(cmd.Context(), app.Config.HistoryDSN)
			if err != nil {
				return err
			}
			defer history.Close()

			records, err := history.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return render.History(cmd.OutOrStdout(), format, records)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to show")
	cmd.Flags().StringVar(&opts.Status, "status", "", "only show runs with this status")
	cmd.Flags().StringVar(&opts.Subject, "issue", "", "only show runs for this issue (owner/repo#number)")
	return cmd
}
