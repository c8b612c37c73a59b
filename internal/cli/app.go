// Package cli implements the triage command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spetersoncode/triage"
	"github.com/spetersoncode/triage/agent"
	"github.com/spetersoncode/triage/client"
	"github.com/spetersoncode/triage/internal/config"
	"github.com/spetersoncode/triage/internal/gitremote"
	"github.com/spetersoncode/triage/llm"
	"github.com/spetersoncode/triage/model"
	"github.com/spetersoncode/triage/pipeline"
	"github.com/spetersoncode/triage/tracker"
	"github.com/spetersoncode/triage/tracker/github"
	"github.com/spetersoncode/triage/workflow"
)

// App holds the collaborators shared by every command. Tests replace the
// constructors.
type App struct {
	// Config and Logger are filled in before any command runs.
	Config *config.Config
	Logger *slog.Logger

	NewTracker   func(cfg *config.Config, logger *slog.Logger) (tracker.Client, error)
	NewGenerator func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.Generator, model.ChatModel, error)
	Getwd        func() (string, error)
}

// NewApp returns an App wired to GitHub and the configured model provider.
func NewApp() *App {
	return &App{
		NewTracker:   newGitHubTracker,
		NewGenerator: newAgent,
		Getwd:        os.Getwd,
	}
}

func newGitHubTracker(cfg *config.Config, logger *slog.Logger) (tracker.Client, error) {
	opts := []github.Option{
		github.WithRateLimit(cfg.TrackerRPS, 5),
		github.WithLogger(logger),
	}
	if cfg.GitHubAPIURL != "" {
		opts = append(opts, github.WithBaseURL(cfg.GitHubAPIURL))
	}
	return github.New(cfg.GitHubToken, opts...)
}

// resolveModel picks the chat model from the model name, the provider's
// default, or the global default, in that order.
func resolveModel(cfg *config.Config) (model.ChatModel, error) {
	if name := cfg.ModelName(); name != "" {
		return model.Parse(name)
	}
	if cfg.Provider != "" {
		m, ok := model.DefaultFor(llm.Provider(cfg.Provider))
		if !ok {
			return model.ChatModel{}, fmt.Errorf("unknown provider: %s", cfg.Provider)
		}
		return m, nil
	}
	return model.Default, nil
}

func apiKeys(cfg *config.Config) client.APIKeys {
	return client.APIKeys{
		Anthropic: cfg.AnthropicKey,
		OpenAI:    cfg.OpenAIKey,
		Google:    cfg.GoogleKey,
	}
}

func newAgent(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.Generator, model.ChatModel, error) {
	m, err := resolveModel(cfg)
	if err != nil {
		return nil, model.ChatModel{}, err
	}
	keys := apiKeys(cfg)
	if keys.For(m.Provider()) == "" {
		return nil, model.ChatModel{}, &client.ErrMissingAPIKey{Provider: string(m.Provider()), Model: m.String()}
	}

	systemPrompt, err := cfg.SystemPrompt(pipeline.DefaultSystemPrompt)
	if err != nil {
		return nil, model.ChatModel{}, err
	}

	c := client.New(client.Config{APIKeys: keys, Model: m, Logger: logger})
	opts := []agent.Option{
		agent.WithName("issue-triager"),
		agent.WithSystemPrompt(systemPrompt),
		agent.WithLogger(logger),
	}
	if cfg.Guard {
		detector := agent.NewInjectionDetector(c,
			agent.WithDetectorModel(string(m.Provider())+":"+m.String()),
			agent.WithThreshold(cfg.GuardThreshold),
		)
		opts = append(opts, agent.WithGuard(detector))
	}
	return agent.New(c, opts...), m, nil
}

// workflows builds both triage workflows around one tracker and agent.
func (a *App) workflows(ctx context.Context) (*workflow.Registry, model.ChatModel, error) {
	tr, err := a.NewTracker(a.Config, a.Logger)
	if err != nil {
		return nil, model.ChatModel{}, fmt.Errorf("creating tracker: %w", err)
	}
	gen, m, err := a.NewGenerator(ctx, a.Config, a.Logger)
	if err != nil {
		return nil, model.ChatModel{}, err
	}

	reg := workflow.NewRegistry()
	for _, apply := range []bool{true, false} {
		wf, err := pipeline.New(pipeline.Deps{Tracker: tr, Agent: gen, Apply: apply})
		if err != nil {
			return nil, model.ChatModel{}, err
		}
		reg.Register(wf)
	}
	return reg, m, nil
}

// repository returns the configured owner/repo, falling back to the git
// origin remote of the working directory.
func (a *App) repository() (owner, repo string, err error) {
	if a.Config.Repository != "" {
		return triage.ParseRepository(a.Config.Repository)
	}
	dir, err := a.Getwd()
	if err != nil {
		return "", "", err
	}
	owner, repo, err = gitremote.Detect(dir, gitremote.DefaultRemote)
	if err != nil {
		return "", "", fmt.Errorf("no repository configured (use --repo or GITHUB_REPOSITORY): %w", err)
	}
	return owner, repo, nil
}
