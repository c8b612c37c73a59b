package agent

import (
	"log/slog"

	"github.com/spetersoncode/triage/llm"
)

// Option configures an Agent.
type Option func(*Agent)

// WithName sets the agent name used in logs and errors.
func WithName(name string) Option {
	return func(a *Agent) {
		a.name = name
	}
}

// WithSystemPrompt sets the instructions sent ahead of every conversation.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) {
		a.systemPrompt = prompt
	}
}

// WithGuard appends an input guard. Guards run in the order added.
func WithGuard(g Guard) Option {
	return func(a *Agent) {
		a.guards = append(a.guards, g)
	}
}

// WithChatOptions sets default request options such as model or temperature.
func WithChatOptions(opts ...llm.Option) Option {
	return func(a *Agent) {
		a.chatOpts = append(a.chatOpts, opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}
