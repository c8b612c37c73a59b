package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spetersoncode/triage/internal/retry"
	"github.com/spetersoncode/triage/llm"
	"github.com/spetersoncode/triage/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	responses []*llm.Response
	errs      []error
	calls     int
	lastOpts  *llm.Options
}

func (m *mockProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (*llm.Response, error) {
	i := m.calls
	m.calls++
	m.lastOpts = llm.ApplyOptions(opts...)
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return &llm.Response{Content: "ok"}, nil
}

func fastRetry() *retry.Config {
	return &retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

func TestErrMissingAPIKey(t *testing.T) {
	t.Run("Error with model", func(t *testing.T) {
		err := &ErrMissingAPIKey{Provider: "anthropic", Model: "claude-sonnet"}
		assert.Equal(t, `no API key configured for anthropic (required by model "claude-sonnet")`, err.Error())
	})

	t.Run("Error without model", func(t *testing.T) {
		err := &ErrMissingAPIKey{Provider: "openai"}
		assert.Equal(t, "no API key configured for openai", err.Error())
	})
}

func TestChat_NoModel(t *testing.T) {
	c := New(Config{})
	_, err := c.Chat(context.Background(), []llm.Message{llm.NewUserMessage("hi")})

	var noModel *ErrNoModel
	require.ErrorAs(t, err, &noModel)
	assert.Equal(t, "chat", noModel.Operation)
}

func TestChat_MissingKey(t *testing.T) {
	c := New(Config{Model: model.ClaudeHaiku45})
	_, err := c.Chat(context.Background(), []llm.Message{llm.NewUserMessage("hi")})

	var missing *ErrMissingAPIKey
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "anthropic", missing.Provider)
	assert.Equal(t, "claude-haiku-4-5", missing.Model)
}

func TestChat_RoutesByModel(t *testing.T) {
	openaiMock := &mockProvider{}
	googleMock := &mockProvider{}
	c := New(Config{Model: model.GPT41},
		WithProvider(llm.ProviderOpenAI, openaiMock),
		WithProvider(llm.ProviderGoogle, googleMock),
	)

	_, err := c.Chat(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, openaiMock.calls)
	assert.Equal(t, "gpt-4.1", openaiMock.lastOpts.Model)

	_, err = c.Chat(context.Background(), nil, llm.WithModel("gemini-2.5-flash"))
	require.NoError(t, err)
	assert.Equal(t, 1, googleMock.calls)
	assert.Equal(t, "gemini-2.5-flash", googleMock.lastOpts.Model)
}

func TestChat_DefaultOptionsOverridden(t *testing.T) {
	mock := &mockProvider{}
	c := New(Config{Model: model.GPT41},
		WithProvider(llm.ProviderOpenAI, mock),
		WithDefaultMaxTokens(100),
		WithDefaultTemperature(0.5),
	)

	_, err := c.Chat(context.Background(), nil, llm.WithMaxTokens(200))
	require.NoError(t, err)
	assert.Equal(t, 200, mock.lastOpts.MaxTokens)
	require.NotNil(t, mock.lastOpts.Temperature)
	assert.Equal(t, 0.5, *mock.lastOpts.Temperature)
}

func TestChat_RetriesTransient(t *testing.T) {
	mock := &mockProvider{
		errs: []error{llm.NewTransientError("overloaded", 529, nil)},
		responses: []*llm.Response{nil, {
			Content: "done",
			Usage:   llm.Usage{InputTokens: 1_000_000, OutputTokens: 0},
		}},
	}
	c := New(Config{Model: model.GPT41, RetryConfig: fastRetry()}, WithProvider(llm.ProviderOpenAI, mock))

	resp, err := c.Chat(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Content)
	assert.Equal(t, 2, mock.calls)

	usage, cost := c.Usage()
	assert.Equal(t, 1_000_000, usage.InputTokens)
	assert.InDelta(t, 2.0, cost, 0.0001)
}

func TestChat_PermanentNotRetried(t *testing.T) {
	perm := llm.NewPermanentError("unauthorized", 401, errors.New("bad key"))
	mock := &mockProvider{errs: []error{perm}}
	c := New(Config{Model: model.GPT41, RetryConfig: fastRetry()}, WithProvider(llm.ProviderOpenAI, mock))

	_, err := c.Chat(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, llm.IsPermanent(err))
	assert.Equal(t, 1, mock.calls)
}

func TestChat_InvalidModelOverride(t *testing.T) {
	c := New(Config{Model: model.GPT41}, WithProvider(llm.ProviderOpenAI, &mockProvider{}))
	_, err := c.Chat(context.Background(), nil, llm.WithModel("acme:thing"))
	assert.Error(t, err)
}
