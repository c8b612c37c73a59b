package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/spetersoncode/triage/mcpserver"
	"github.com/spetersoncode/triage/pipeline"
	"github.com/spetersoncode/triage/store"
	"github.com/spetersoncode/triage/workflow"
)

// Version is reported to MCP clients.
var Version = "dev"

func newMCPCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve triage as MCP tools over stdio",
		Long: `Serve the triage_issue and list_runs tools over stdin/stdout for MCP
clients such as desktop assistants. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Config.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			reg, m, err := app.workflows(ctx)
			if err != nil {
				return err
			}
			history, err := store.Open(ctx, app.Config.HistoryDSN)
			if err != nil {
				return err
			}
			defer history.Close()

			s := mcpserver.NewServer(reg,
				mcpserver.WithVersion(Version),
				mcpserver.WithHistory(history),
				mcpserver.WithLogger(app.Logger),
				mcpserver.WithRunOptions(
					workflow.WithLogger(app.Logger),
					workflow.WithObserver(store.NewRecorder(history, app.Logger, pipeline.UsageAnnotator(m))),
				),
			)
			app.Logger.Info("serving MCP over stdio", "workflows", reg.IDs())
			return server.ServeStdio(s)
		},
	}
}
