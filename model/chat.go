package model

import (
	"fmt"
	"strings"

	"github.com/spetersoncode/triage/llm"
)

// ChatModel represents a chat model from any provider.
type ChatModel struct {
	id       string
	provider llm.Provider
	pricing  Pricing
}

// String returns the API identifier for this model.
func (m ChatModel) String() string { return m.id }

// Provider returns which provider this model belongs to.
func (m ChatModel) Provider() llm.Provider { return m.provider }

// Pricing returns the pricing for this model.
func (m ChatModel) Pricing() Pricing { return m.pricing }

// Cost estimates the USD cost of the given usage.
func (m ChatModel) Cost(usage llm.Usage) float64 {
	return m.pricing.Cost(usage)
}

// IsZero reports whether m is the zero ChatModel.
func (m ChatModel) IsZero() bool { return m.id == "" }

// Anthropic models.
var (
	ClaudeOpus45   = ChatModel{id: "claude-opus-4-5", provider: llm.ProviderAnthropic, pricing: Pricing{InputPerMillion: 5.00, OutputPerMillion: 25.00}}
	ClaudeSonnet45 = ChatModel{id: "claude-sonnet-4-5", provider: llm.ProviderAnthropic, pricing: Pricing{InputPerMillion: 3.00, OutputPerMillion: 15.00}}
	ClaudeHaiku45  = ChatModel{id: "claude-haiku-4-5", provider: llm.ProviderAnthropic, pricing: Pricing{InputPerMillion: 1.00, OutputPerMillion: 5.00}}
)

// OpenAI models.
var (
	GPT5     = ChatModel{id: "gpt-5", provider: llm.ProviderOpenAI, pricing: Pricing{InputPerMillion: 1.25, OutputPerMillion: 10.00}}
	GPT5Mini = ChatModel{id: "gpt-5-mini", provider: llm.ProviderOpenAI, pricing: Pricing{InputPerMillion: 0.25, OutputPerMillion: 1.00}}
	GPT5Nano = ChatModel{id: "gpt-5-nano", provider: llm.ProviderOpenAI, pricing: Pricing{InputPerMillion: 0.10, OutputPerMillion: 0.40}}
	GPT41    = ChatModel{id: "gpt-4.1", provider: llm.ProviderOpenAI, pricing: Pricing{InputPerMillion: 2.00, OutputPerMillion: 8.00}}
)

// Google models.
var (
	Gemini25Pro       = ChatModel{id: "gemini-2.5-pro", provider: llm.ProviderGoogle, pricing: Pricing{InputPerMillion: 1.25, OutputPerMillion: 10.00}}
	Gemini25Flash     = ChatModel{id: "gemini-2.5-flash", provider: llm.ProviderGoogle, pricing: Pricing{InputPerMillion: 0.15, OutputPerMillion: 0.60}}
	Gemini25FlashLite = ChatModel{id: "gemini-2.5-flash-lite", provider: llm.ProviderGoogle, pricing: Pricing{InputPerMillion: 0.075, OutputPerMillion: 0.30}}
)

// Default is the triage model when nothing is configured.
var Default = GPT5Nano

var catalog = []ChatModel{
	ClaudeOpus45, ClaudeSonnet45, ClaudeHaiku45,
	GPT5, GPT5Mini, GPT5Nano, GPT41,
	Gemini25Pro, Gemini25Flash, Gemini25FlashLite,
}

// DefaultFor returns the model used for provider p when only the provider
// is configured.
func DefaultFor(p llm.Provider) (ChatModel, bool) {
	switch p {
	case llm.ProviderAnthropic:
		return ClaudeHaiku45, true
	case llm.ProviderOpenAI:
		return GPT5Nano, true
	case llm.ProviderGoogle:
		return Gemini25Flash, true
	}
	return ChatModel{}, false
}

// All returns every known chat model.
func All() []ChatModel {
	out := make([]ChatModel, len(catalog))
	copy(out, catalog)
	return out
}

// Parse resolves a model identifier. Known IDs return the catalog entry.
// Unknown IDs are accepted when prefixed with a provider ("openai:gpt-x") or
// when the provider can be inferred from the name; pricing is then zero.
func Parse(name string) (ChatModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ChatModel{}, fmt.Errorf("model: empty model name")
	}
	for _, m := range catalog {
		if m.id == name {
			return m, nil
		}
	}

	if prefix, id, ok := strings.Cut(name, ":"); ok {
		switch p := llm.Provider(prefix); p {
		case llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderGoogle:
			if id == "" {
				return ChatModel{}, fmt.Errorf("model: empty model name after %q", prefix)
			}
			for _, m := range catalog {
				if m.id == id && m.provider == p {
					return m, nil
				}
			}
			return ChatModel{id: id, provider: p}, nil
		}
		return ChatModel{}, fmt.Errorf("model: unknown provider %q", prefix)
	}

	switch {
	case strings.HasPrefix(name, "claude-"):
		return ChatModel{id: name, provider: llm.ProviderAnthropic}, nil
	case strings.HasPrefix(name, "gpt-"), strings.HasPrefix(name, "o1"),
		strings.HasPrefix(name, "o3"), strings.HasPrefix(name, "o4"):
		return ChatModel{id: name, provider: llm.ProviderOpenAI}, nil
	case strings.HasPrefix(name, "gemini-"):
		return ChatModel{id: name, provider: llm.ProviderGoogle}, nil
	}
	return ChatModel{}, fmt.Errorf("model: cannot infer provider for %q", name)
}
