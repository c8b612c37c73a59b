package openai

import (
	"testing"

	"github.com/spetersoncode/triage/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type classification struct {
	Labels []struct {
		Name   string `json:"name"`
		Reason string `json:"reason"`
	} `json:"labels"`
}

func TestBuildSchemaFormat_StrictObjects(t *testing.T) {
	rs := llm.SchemaFrom[classification]().Enum("labels.name", "bug").Response("triage", "labels to add")

	format := buildSchemaFormat(&rs)
	require.NotNil(t, format.OfJSONSchema)

	js := format.OfJSONSchema.JSONSchema
	assert.Equal(t, "triage", js.Name)

	schema, ok := js.Schema.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, schema["additionalProperties"])

	labels := schema["properties"].(map[string]any)["labels"].(map[string]any)
	item := labels["items"].(map[string]any)
	assert.Equal(t, false, item["additionalProperties"])
}

func TestBuildSchemaFormat_DefaultName(t *testing.T) {
	format := buildSchemaFormat(&llm.ResponseSchema{Schema: []byte(`{"type":"object"}`)})
	assert.Equal(t, "response_schema", format.OfJSONSchema.JSONSchema.Name)
}

func TestConvertMessages_SkipsEmpty(t *testing.T) {
	msgs := convertMessages([]llm.Message{
		llm.NewSystemMessage("be brief"),
		llm.NewUserMessage(""),
		llm.NewUserMessage("hello"),
	})
	assert.Len(t, msgs, 2)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
}
