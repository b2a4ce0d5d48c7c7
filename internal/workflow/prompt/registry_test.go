package prompt

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_IntentParse(t *testing.T) {
	r := NewRegistry()
	msgs, err := r.Render(context.Background(), PromptIntentParseV1, map[string]any{"question": "Who spoke at Hack Night?"})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, `{"intent": "semantic", "query": "..."}`)
	assert.Contains(t, msgs[1].Content, `User Question: "Who spoke at Hack Night?"`)
}

func TestRender_Answer(t *testing.T) {
	r := NewRegistry()
	msgs, err := r.Render(context.Background(), PromptAnswerV1, map[string]any{
		"question": "q",
		"context":  "Database returned: [(8)]",
		"sql":      "N/A",
	})
	require.NoError(t, err)
	assert.Contains(t, msgs[1].Content, "Database returned: [(8)]")
	assert.Contains(t, msgs[1].Content, "SQL Query Run (if any):\nN/A")
}

func TestChatTemplate_Cached(t *testing.T) {
	r := NewRegistry()
	a, err := r.ChatTemplate(PromptAnswerV1)
	require.NoError(t, err)
	b, err := r.ChatTemplate(PromptAnswerV1)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestChatTemplate_Unknown(t *testing.T) {
	_, err := NewRegistry().ChatTemplate("missing_v9")
	assert.Error(t, err)
}
