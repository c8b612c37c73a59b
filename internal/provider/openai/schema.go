package openai

import (
	"encoding/json"
	"errors"

	"github.com/openai/openai-go"
	"github.com/spetersoncode/triage/llm"
)

func buildSchemaFormat(schema *llm.ResponseSchema) openai.ChatCompletionNewParamsResponseFormatUnion {
	var schemaMap map[string]any
	_ = json.Unmarshal(schema.Schema, &schemaMap)

	name := schema.Name
	if name == "" {
		name = "response_schema"
	}

	// strict mode requires additionalProperties: false on every object
	addAdditionalPropertiesFalse(schemaMap)

	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        name,
				Description: openai.String(schema.Description),
				Schema:      schemaMap,
				Strict:      openai.Bool(true),
			},
		},
	}
}

func addAdditionalPropertiesFalse(schema map[string]any) {
	if schema == nil {
		return
	}

	if schemaType, ok := schema["type"].(string); ok && schemaType == "object" {
		schema["additionalProperties"] = false
	}

	if props, ok := schema["properties"].(map[string]any); ok {
		for _, propSchema := range props {
			if propMap, ok := propSchema.(map[string]any); ok {
				addAdditionalPropertiesFalse(propMap)
			}
		}
	}

	if items, ok := schema["items"].(map[string]any); ok {
		addAdditionalPropertiesFalse(items)
	}
}

// wrapError categorizes OpenAI API errors by HTTP status and Retry-After.
func wrapError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		// network errors fall through to the retry heuristics
		return err
	}
	return llm.NewStatusError("openai", apiErr.StatusCode, llm.ParseRetryAfter(apiErr.Response), err)
}
