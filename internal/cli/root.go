package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/triage/internal/config"
	"github.com/spetersoncode/triage/internal/logging"
)

// NewRootCommand builds the triage command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "triage",
		Short: "Label GitHub issues with a language model",
		Long: `triage reads a GitHub issue and the repository's labels, asks a language
model which labels apply, and adds them to the issue.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.configure(cmd, configFile)
		},
	}

	d := config.Default()
	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ./triage.yaml)")
	flags.String("repo", "", "repository as owner/name (default from GITHUB_REPOSITORY or the git origin remote)")
	flags.String("provider", "", "model provider: anthropic, openai or google")
	flags.String("model", "", "model id, e.g. gpt-5-nano or claude-haiku-4-5")
	flags.String("format", d.Format, "output format: text, json or yaml")
	flags.String("history-db", d.HistoryDSN, "SQLite database for run history")
	flags.String("log-level", d.LogLevel, "log level: debug, info, warn or error")
	flags.String("log-format", d.LogFormat, "log format: text or json")

	root.AddCommand(
		newRunCommand(app),
		newHistoryCommand(app),
		newMCPCommand(app),
		newPromptCommand(app),
	)
	return root
}

func (a *App) configure(cmd *cobra.Command, configFile string) error {
	loader := config.NewLoader()
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = loader.LoadFromFile(configFile)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.Config = cfg
	a.Logger = logger
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCommand(app)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return ExitCode(err)
}
