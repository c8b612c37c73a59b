package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/spetersoncode/triage/llm"
)

// Agent produces structured responses from a chat provider.
type Agent struct {
	chat         llm.ChatProvider
	name         string
	systemPrompt string
	guards       []Guard
	chatOpts     []llm.Option
	logger       *slog.Logger
}

// New creates an Agent backed by the given chat provider.
func New(chat llm.ChatProvider, opts ...Option) *Agent {
	a := &Agent{
		chat:   chat,
		name:   "agent",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the agent name used in logs and errors.
func (a *Agent) Name() string { return a.name }

// Generate checks messages against the agent's guards, sends them with the
// response schema and unmarshals the reply into out, which must be a
// non-nil pointer.
func (a *Agent) Generate(ctx context.Context, messages []llm.Message, schema llm.ResponseSchema, out any) (*llm.Response, error) {
	if rv := reflect.ValueOf(out); rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, fmt.Errorf("agent %s: output must be a non-nil pointer, got %T", a.name, out)
	}

	if err := a.checkGuards(ctx, messages); err != nil {
		return nil, err
	}

	conversation := make([]llm.Message, 0, len(messages)+1)
	if a.systemPrompt != "" {
		conversation = append(conversation, llm.NewSystemMessage(a.systemPrompt))
	}
	conversation = append(conversation, messages...)

	opts := append(append([]llm.Option{}, a.chatOpts...), llm.WithResponseSchema(schema))

	start := time.Now()
	resp, err := a.chat.Chat(ctx, conversation, opts...)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", a.name, err)
	}
	if resp == nil || resp.Content == "" {
		return nil, fmt.Errorf("agent %s: %w", a.name, llm.ErrEmptyResponse)
	}

	if err := json.Unmarshal([]byte(resp.Content), out); err != nil {
		return resp, &llm.UnmarshalError{
			Context:    "agent " + a.name,
			Content:    resp.Content,
			TargetType: fmt.Sprintf("%T", out),
			Err:        err,
		}
	}

	a.logger.Debug("agent generated response",
		"agent", a.name,
		"schema", schema.Name,
		"duration", time.Since(start),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	return resp, nil
}

// checkGuards runs every guard over every user message in order.
func (a *Agent) checkGuards(ctx context.Context, messages []llm.Message) error {
	for _, g := range a.guards {
		for _, msg := range messages {
			if msg.Role != llm.RoleUser || msg.Content == "" {
				continue
			}
			verdict, err := g.Check(ctx, msg.Content)
			if err != nil {
				return fmt.Errorf("agent %s: guard %s: %w", a.name, guardName(g), err)
			}
			if verdict.Rejected {
				a.logger.Warn("input rejected by guard", "agent", a.name, "guard", guardName(g), "reason", verdict.Reason)
				return &RejectedError{Agent: a.name, Guard: guardName(g), Reason: verdict.Reason}
			}
		}
	}
	return nil
}
