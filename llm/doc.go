// Package llm provides the provider-agnostic chat primitives used by the
// triage agent: messages, request options, structured response schemas and
// categorized errors.
//
// Concrete providers live under internal/provider and are selected by the
// [github.com/spetersoncode/triage/client] package. Everything above the
// client depends only on [ChatProvider]:
//
//	resp, err := provider.Chat(ctx, []llm.Message{
//	    llm.NewSystemMessage("You are a triage assistant."),
//	    llm.NewUserMessage(prompt),
//	}, llm.WithResponseSchema(schema))
package llm
