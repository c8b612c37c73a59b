package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spetersoncode/triage/internal/provider/anthropic"
	"github.com/spetersoncode/triage/internal/provider/google"
	"github.com/spetersoncode/triage/internal/provider/openai"
	"github.com/spetersoncode/triage/internal/retry"
	"github.com/spetersoncode/triage/llm"
	"github.com/spetersoncode/triage/model"
)

// APIKeys holds API keys for different providers.
// Only configure keys for providers you intend to use.
type APIKeys struct {
	Anthropic string
	OpenAI    string
	Google    string
}

// For returns the key configured for provider p.
func (k APIKeys) For(p llm.Provider) string {
	switch p {
	case llm.ProviderAnthropic:
		return k.Anthropic
	case llm.ProviderOpenAI:
		return k.OpenAI
	case llm.ProviderGoogle:
		return k.Google
	}
	return ""
}

// Config holds configuration for creating a unified client.
type Config struct {
	// APIKeys contains authentication keys for each provider.
	APIKeys APIKeys

	// Model is the default chat model. Its provider determines which
	// backend is used.
	Model model.ChatModel

	// RetryConfig configures retry behavior for transient errors.
	// If nil, retry.DefaultConfig is used.
	RetryConfig *retry.Config

	// Logger receives request and retry logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// ErrMissingAPIKey is returned when a model is used but no API key
// is configured for that model's provider.
type ErrMissingAPIKey struct {
	Provider string
	Model    string
}

func (e *ErrMissingAPIKey) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("no API key configured for %s (required by model %q)", e.Provider, e.Model)
	}
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// ErrNoModel is returned when no model is specified and no default is configured.
type ErrNoModel struct {
	Operation string
}

func (e *ErrNoModel) Error() string {
	return fmt.Sprintf("no model specified for %s: set client.Config Model or use llm.WithModel()", e.Operation)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDefaultTemperature sets the default temperature for chat requests.
// Per-request options override this default.
func WithDefaultTemperature(t float64) ClientOption {
	return func(c *Client) {
		c.defaultChatOpts = append(c.defaultChatOpts, llm.WithTemperature(t))
	}
}

// WithDefaultMaxTokens sets the default max tokens for chat requests.
// Per-request options override this default.
func WithDefaultMaxTokens(n int) ClientOption {
	return func(c *Client) {
		c.defaultChatOpts = append(c.defaultChatOpts, llm.WithMaxTokens(n))
	}
}

// WithProvider installs a ready-made backend for p instead of building
// one from an API key.
func WithProvider(p llm.Provider, cp llm.ChatProvider) ClientOption {
	return func(c *Client) {
		c.providers[p] = cp
	}
}

// Client routes chat requests to the provider of the selected model.
// Provider clients are lazily initialized when first needed.
type Client struct {
	apiKeys         APIKeys
	model           model.ChatModel
	retryConfig     retry.Config
	logger          *slog.Logger
	defaultChatOpts []llm.Option

	mu        sync.RWMutex
	providers map[llm.Provider]llm.ChatProvider
	initErr   map[llm.Provider]error

	usageMu sync.Mutex
	usage   llm.Usage
	cost    float64
}

// New creates a unified client with the given configuration.
func New(cfg Config, opts ...ClientOption) *Client {
	retryConfig := retry.DefaultConfig()
	if cfg.RetryConfig != nil {
		retryConfig = *cfg.RetryConfig
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		apiKeys:     cfg.APIKeys,
		model:       cfg.Model,
		retryConfig: retryConfig,
		logger:      logger,
		providers:   make(map[llm.Provider]llm.ChatProvider),
		initErr:     make(map[llm.Provider]error),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the default chat model.
func (c *Client) Model() model.ChatModel { return c.model }

// getProvider returns the backend for p, initializing it if needed.
func (c *Client) getProvider(ctx context.Context, p llm.Provider, modelID string) (llm.ChatProvider, error) {
	c.mu.RLock()
	if cp, ok := c.providers[p]; ok {
		c.mu.RUnlock()
		return cp, nil
	}
	if err := c.initErr[p]; err != nil {
		c.mu.RUnlock()
		return nil, err
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if cp, ok := c.providers[p]; ok {
		return cp, nil
	}
	if err := c.initErr[p]; err != nil {
		return nil, err
	}

	key := c.apiKeys.For(p)
	if key == "" {
		return nil, &ErrMissingAPIKey{Provider: p.String(), Model: modelID}
	}

	var cp llm.ChatProvider
	switch p {
	case llm.ProviderAnthropic:
		cp = anthropic.New(key)
	case llm.ProviderOpenAI:
		cp = openai.New(key)
	case llm.ProviderGoogle:
		gc, err := google.New(ctx, key)
		if err != nil {
			c.initErr[p] = fmt.Errorf("failed to initialize Google client: %w", err)
			return nil, c.initErr[p]
		}
		cp = gc
	default:
		return nil, fmt.Errorf("unsupported provider: %s", p)
	}

	c.providers[p] = cp
	return cp, nil
}

// Chat sends a conversation and returns a complete response.
// The model can be specified via llm.WithModel, or the default model is used.
// Transient errors are retried according to the client's retry configuration.
func (c *Client) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (*llm.Response, error) {
	// Prepend default options so per-request options override them
	opts = append(append([]llm.Option{}, c.defaultChatOpts...), opts...)
	options := llm.ApplyOptions(opts...)

	m := c.model
	if options.Model != "" {
		parsed, err := model.Parse(options.Model)
		if err != nil {
			return nil, err
		}
		m = parsed
	}
	if m.IsZero() {
		return nil, &ErrNoModel{Operation: "chat"}
	}

	provider, err := c.getProvider(ctx, m.Provider(), m.String())
	if err != nil {
		return nil, err
	}
	opts = append(opts, llm.WithModel(m.String()))

	logger := c.logger.With("provider", m.Provider().String(), "model", m.String())
	cfg := c.retryConfig
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Warn("retrying chat request", "attempt", attempt, "delay", delay, "error", err)
	}

	start := time.Now()
	resp, err := retry.Do(ctx, cfg, func() (*llm.Response, error) {
		return provider.Chat(ctx, messages, opts...)
	})
	if err != nil {
		logger.Error("chat request failed", "duration", time.Since(start), "error", err)
		return nil, err
	}

	c.usageMu.Lock()
	c.usage = c.usage.Add(resp.Usage)
	c.cost += m.Cost(resp.Usage)
	c.usageMu.Unlock()

	logger.Debug("chat request complete",
		"duration", time.Since(start),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	return resp, nil
}

// Usage returns the token usage accumulated across all successful requests
// and its estimated USD cost.
func (c *Client) Usage() (llm.Usage, float64) {
	c.usageMu.Lock()
	defer c.usageMu.Unlock()
	return c.usage, c.cost
}

var _ llm.ChatProvider = (*Client)(nil)
