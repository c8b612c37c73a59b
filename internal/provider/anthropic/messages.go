package anthropic

import (
	"encoding/json"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spetersoncode/triage/llm"
)

// jsonResponseToolName is the name of the synthetic tool used for structured output.
const jsonResponseToolName = "structured_response"

func convertMessages(messages []llm.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var result []anthropic.MessageParam
	var system []anthropic.TextBlockParam

	for _, msg := range messages {
		// Anthropic rejects empty text blocks
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case llm.RoleAssistant:
			result = append(result, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return result, system
}

func buildJSONTool(rs *llm.ResponseSchema) (anthropic.ToolUnionParam, anthropic.ToolChoiceUnionParam) {
	var schema map[string]any
	if len(rs.Schema) > 0 {
		_ = json.Unmarshal(rs.Schema, &schema)
	}
	if schema == nil {
		schema = map[string]any{"type": "object", "additionalProperties": true}
	}

	description := "Output the response as structured JSON"
	if rs.Description != "" {
		description = rs.Description
	}

	var required []string
	if reqVal, ok := schema["required"].([]any); ok {
		for _, r := range reqVal {
			if s, ok := r.(string); ok {
				required = append(required, s)
			}
		}
	}

	tool := anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        jsonResponseToolName,
			Description: anthropic.String(description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schema["properties"],
				Required:   required,
			},
		},
	}
	choice := anthropic.ToolChoiceUnionParam{
		OfTool: &anthropic.ToolChoiceToolParam{Name: jsonResponseToolName},
	}
	return tool, choice
}

// wrapError categorizes Anthropic API errors by HTTP status.
func wrapError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	return llm.NewStatusError("anthropic", apiErr.StatusCode, llm.ParseRetryAfter(apiErr.Response), err)
}
