package model

import (
	"testing"

	"github.com/spetersoncode/triage/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		id       string
		provider llm.Provider
		priced   bool
	}{
		{"catalog entry", "claude-sonnet-4-5", "claude-sonnet-4-5", llm.ProviderAnthropic, true},
		{"trims whitespace", " gpt-4.1 ", "gpt-4.1", llm.ProviderOpenAI, true},
		{"provider prefix", "google:gemini-exp", "gemini-exp", llm.ProviderGoogle, false},
		{"prefixed catalog entry", "openai:gpt-5-nano", "gpt-5-nano", llm.ProviderOpenAI, true},
		{"inferred claude", "claude-3-haiku", "claude-3-haiku", llm.ProviderAnthropic, false},
		{"inferred openai", "o3-pro", "o3-pro", llm.ProviderOpenAI, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.id, m.String())
			assert.Equal(t, tt.provider, m.Provider())
			assert.Equal(t, tt.priced, m.Pricing().InputPerMillion > 0)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{"", "mistral-large", "acme:foo", "openai:"} {
		_, err := Parse(input)
		assert.Error(t, err, input)
	}
}

func TestChatModel_Cost(t *testing.T) {
	// $3/M input, $15/M output
	usage := llm.Usage{InputTokens: 10000, OutputTokens: 5000}
	assert.InDelta(t, 0.105, ClaudeSonnet45.Cost(usage), 0.0001)
	assert.Greater(t, ClaudeSonnet45.Cost(usage), ClaudeHaiku45.Cost(usage))
	assert.Equal(t, 0.0, ChatModel{id: "x"}.Cost(usage))
}

func TestAll_ReturnsCopy(t *testing.T) {
	all := All()
	all[0] = ChatModel{}
	assert.False(t, All()[0].IsZero())
}

func TestDefaultFor(t *testing.T) {
	for _, p := range []llm.Provider{llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderGoogle} {
		m, ok := DefaultFor(p)
		require.True(t, ok, p)
		assert.Equal(t, p, m.Provider())
	}
	_, ok := DefaultFor("vertex")
	assert.False(t, ok)
}
