package google

import (
	"testing"

	"github.com/spetersoncode/triage/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type labelPick struct {
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

func TestConvertJSONSchema(t *testing.T) {
	rs := llm.SchemaFrom[labelPick]().Enum("labels.name", "bug", "docs").Response("triage", "")

	s := convertJSONSchema(rs.Schema)
	require.NotNil(t, s)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"labels"}, s.Required)

	labels := s.Properties["labels"]
	require.NotNil(t, labels)
	assert.Equal(t, genai.TypeArray, labels.Type)
	require.NotNil(t, labels.Items)
	assert.Equal(t, []string{"bug", "docs"}, labels.Items.Properties["name"].Enum)
}

func TestConvertJSONSchema_Invalid(t *testing.T) {
	assert.Nil(t, convertJSONSchema(nil))
	assert.Nil(t, convertJSONSchema([]byte("{not json")))
}

func TestConvertMessages_SystemInstruction(t *testing.T) {
	contents, system := convertMessages([]llm.Message{
		llm.NewSystemMessage("you triage issues"),
		llm.NewUserMessage("issue text"),
		{Role: llm.RoleAssistant, Content: "ok"},
	})

	require.NotNil(t, system)
	assert.Equal(t, "you triage issues", system.Parts[0].Text)
	require.Len(t, contents, 2)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, genai.RoleModel, contents[1].Role)
}
