// Package agent wraps a chat provider as a structured-output agent.
//
// An Agent carries its instructions (the system prompt), default request
// options and a chain of input guards. Generate runs the guards over the
// caller's messages, sends the conversation with a response schema and
// decodes the reply into a Go value:
//
//	a := agent.New(c,
//	    agent.WithName("triager"),
//	    agent.WithSystemPrompt(prompt),
//	    agent.WithGuard(agent.NewInjectionDetector(c)),
//	)
//
//	var out Classification
//	_, err := a.Generate(ctx, []llm.Message{llm.NewUserMessage(text)},
//	    llm.SchemaFrom[Classification]().Response("classification", ""), &out)
//
// A guard that rejects the input stops the request before any model is
// called; the returned error is a *RejectedError.
package agent
