package anthropic

import (
	"testing"

	"github.com/spetersoncode/triage/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertMessages(t *testing.T) {
	msgs, system := convertMessages([]llm.Message{
		llm.NewSystemMessage("system prompt"),
		llm.NewUserMessage("hello"),
		llm.NewUserMessage(""),
		{Role: llm.RoleAssistant, Content: "hi"},
	})

	require.Len(t, system, 1)
	assert.Equal(t, "system prompt", system[0].Text)
	assert.Len(t, msgs, 2)
}

func TestBuildJSONTool(t *testing.T) {
	type out struct {
		Labels []string `json:"labels"`
	}
	rs := llm.SchemaFrom[out]().Response("triage", "Pick labels")

	tool, choice := buildJSONTool(&rs)
	require.NotNil(t, tool.OfTool)
	assert.Equal(t, jsonResponseToolName, tool.OfTool.Name)
	assert.Equal(t, []string{"labels"}, tool.OfTool.InputSchema.Required)
	require.NotNil(t, choice.OfTool)
	assert.Equal(t, jsonResponseToolName, choice.OfTool.Name)
}
