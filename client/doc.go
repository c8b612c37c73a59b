// Package client provides a multi-provider chat client.
//
// The Client wraps the provider-specific implementations and adds:
//
//   - Model-centric routing: models know their provider
//   - Lazy provider construction from API keys
//   - Automatic retries with exponential backoff for transient errors
//   - Token usage and cost accounting
//
// # Basic Usage
//
//	c := client.New(client.Config{
//	    APIKeys: client.APIKeys{
//	        Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
//	        OpenAI:    os.Getenv("OPENAI_API_KEY"),
//	    },
//	    Model: model.GPT41,
//	})
//
//	resp, err := c.Chat(ctx, []llm.Message{llm.NewUserMessage("Hello!")})
//
// A request can switch models, and with them providers:
//
//	resp, err := c.Chat(ctx, messages, llm.WithModel("claude-haiku-4-5"))
package client
