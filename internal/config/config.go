// Package config loads triage settings from .env files, an optional
// triage.yaml, TRIAGE_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds everything the triage command needs.
type Config struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`

	AnthropicKey string `mapstructure:"anthropic_api_key"`
	OpenAIKey    string `mapstructure:"openai_api_key"`
	GoogleKey    string `mapstructure:"google_api_key"`
	GitHubToken  string `mapstructure:"github_token"`
	GitHubAPIURL string `mapstructure:"github_api_url"`

	// Repository is "owner/name"; empty means detect from the git remote.
	Repository string `mapstructure:"repository"`

	// SystemPromptFile replaces the built-in system prompt when set.
	// Relative paths resolve against Workspace.
	SystemPromptFile string `mapstructure:"system_prompt_file"`
	Workspace        string `mapstructure:"workspace"`

	Apply bool `mapstructure:"apply"`
	Guard bool `mapstructure:"guard"`
	// GuardThreshold is the injection confidence at which issue text is
	// rejected.
	GuardThreshold float64 `mapstructure:"guard_threshold"`
	Concurrency    int     `mapstructure:"concurrency"`
	TrackerRPS     float64 `mapstructure:"tracker_rps"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Format    string `mapstructure:"format"`

	HistoryDSN string `mapstructure:"history_dsn"`

	// GitHubOutput is the GitHub Actions output file, if any.
	GitHubOutput string `mapstructure:"github_output"`
	// EventPath is the GitHub Actions event payload, consulted for the
	// issue number when none is given.
	EventPath string `mapstructure:"event_path"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Apply:          true,
		Guard:          true,
		GuardThreshold: 0.5,
		Concurrency:    4,
		TrackerRPS:     10,
		LogLevel:       "info",
		LogFormat:      "text",
		Format:         "text",
		HistoryDSN:     ":memory:",
	}
}

// envAliases are the conventional variable names accepted besides TRIAGE_*.
var envAliases = map[string][]string{
	"anthropic_api_key": {"ANTHROPIC_API_KEY"},
	"openai_api_key":    {"OPENAI_API_KEY"},
	"google_api_key":    {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
	"github_token":      {"GITHUB_TOKEN"},
	"github_api_url":    {"GITHUB_API_URL"},
	"repository":        {"GITHUB_REPOSITORY"},
	"workspace":         {"GITHUB_WORKSPACE"},
	"github_output":     {"GITHUB_OUTPUT"},
	"event_path":        {"GITHUB_EVENT_PATH"},
}

// Loader reads configuration through viper.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a Loader with defaults and environment bindings set up.
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		envs := append([]string{"TRIAGE_" + strings.ToUpper(key)}, names...)
		// BindEnv only fails without a key.
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	return &Loader{v: v}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("apply", d.Apply)
	v.SetDefault("guard", d.Guard)
	v.SetDefault("guard_threshold", d.GuardThreshold)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("tracker_rps", d.TrackerRPS)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("format", d.Format)
	v.SetDefault("history_dsn", d.HistoryDSN)
	for _, key := range []string{"provider", "model", "system_prompt_file"} {
		v.SetDefault(key, "")
	}
}

// flagKeys maps flag names whose config key differs from the dashed form.
var flagKeys = map[string]string{
	"repo":       "repository",
	"history-db": "history_dsn",
}

// BindFlags lets command-line flags override file and environment values.
// Flag names use dashes, e.g. --log-level binds log_level.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" {
			return
		}
		key, ok := flagKeys[f.Name]
		if !ok {
			key = strings.ReplaceAll(f.Name, "-", "_")
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

// Load reads .env (if present) and triage.yaml from the working directory
// or $HOME/.config/triage, then the environment.
func (l *Loader) Load() (*Config, error) {
	_ = godotenv.Load()

	l.v.SetConfigName("triage")
	l.v.SetConfigType("yaml")
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "triage"))
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return l.unmarshal()
}

// LoadFromFile reads configuration from a specific YAML file.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.GitHubToken == "" {
		return fmt.Errorf("GITHUB_TOKEN is required")
	}
	switch c.Provider {
	case "":
		// resolved from the model name
	case "anthropic":
		if c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for anthropic provider")
		}
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for openai provider")
		}
	case "google":
		if c.GoogleKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required for google provider")
		}
	default:
		return fmt.Errorf("unknown provider: %s (must be anthropic, openai, or google)", c.Provider)
	}
	if c.GuardThreshold < 0 || c.GuardThreshold > 1 {
		return fmt.Errorf("guard threshold must be between 0 and 1, got %g", c.GuardThreshold)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	switch c.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format: %s (must be text, json, or yaml)", c.Format)
	}
	return nil
}

// ModelName returns the configured model, prefixed with the provider when
// both are set so model.Parse resolves ids outside the catalog.
func (c *Config) ModelName() string {
	if c.Provider != "" && c.Model != "" && !strings.Contains(c.Model, ":") {
		return c.Provider + ":" + c.Model
	}
	return c.Model
}

// ResolveSystemPromptFile returns the absolute prompt file path, or "" when
// no file is configured.
func (c *Config) ResolveSystemPromptFile() string {
	if c.SystemPromptFile == "" {
		return ""
	}
	if filepath.IsAbs(c.SystemPromptFile) {
		return c.SystemPromptFile
	}
	base := c.Workspace
	if base == "" {
		base, _ = os.Getwd()
	}
	return filepath.Join(base, c.SystemPromptFile)
}

// SystemPrompt reads the configured prompt file. It returns fallback when no
// file is configured.
func (c *Config) SystemPrompt(fallback string) (string, error) {
	path := c.ResolveSystemPromptFile()
	if path == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("system prompt file not found: %s", path)
	}
	if err != nil {
		return "", fmt.Errorf("reading system prompt file %s: %w", path, err)
	}
	return string(data), nil
}
