package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-knowledge-api/internal/config"
)

type fakeModel struct {
	got   []*schema.Message
	reply string
	err   error
}

func (m *fakeModel) Generate(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.got = in
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *fakeModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

type fakeSource struct {
	available bool
	model     *fakeModel
}

func (s *fakeSource) Available(string) bool { return s.available }

func (s *fakeSource) Get(context.Context, string) (model.BaseChatModel, error) {
	return s.model, nil
}

func TestChatClient_Complete(t *testing.T) {
	m := &fakeModel{reply: "  There are two events.  "}
	c := NewChatClient(&fakeSource{available: true, model: m}, "gemini", "answer")

	out, err := c.Complete(context.Background(), "be brief", "how many events?")
	require.NoError(t, err)
	assert.Equal(t, "There are two events.", out)
	require.Len(t, m.got, 2)
	assert.Equal(t, schema.System, m.got[0].Role)
	assert.Equal(t, schema.User, m.got[1].Role)
	assert.Equal(t, "how many events?", m.got[1].Content)
}

func TestChatClient_NoSystemPrompt(t *testing.T) {
	m := &fakeModel{reply: "ok"}
	c := NewChatClient(&fakeSource{available: true, model: m}, "", "answer")

	_, err := c.Complete(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.Len(t, m.got, 1)
}

func TestChatClient_Unavailable(t *testing.T) {
	c := NewChatClient(&fakeSource{available: false}, "gemini", "answer")
	assert.False(t, c.Available())

	_, err := c.Complete(context.Background(), "", "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)

	var nilClient *ChatClient
	assert.False(t, nilClient.Available())
}

func TestChatClient_GenerateError(t *testing.T) {
	m := &fakeModel{err: errors.New("quota exceeded")}
	c := NewChatClient(&fakeSource{available: true, model: m}, "gemini", "answer")

	_, err := c.Complete(context.Background(), "", "hi")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestEinoFactory_Available(t *testing.T) {
	cfg := &config.Config{LLM: config.LLMConfig{
		DefaultProvider: "gemini",
		Providers: map[string]config.ProviderConfig{
			"gemini": {Model: "gemini-2.5-flash"},
			"local":  {APIKey: "k", Model: "m"},
		},
	}}
	f := NewEinoFactory(cfg)

	assert.False(t, f.Available(""))
	assert.True(t, f.Available("local"))
	assert.False(t, f.Available("missing"))
	assert.Equal(t, "gemini-2.5-flash", f.ModelName(""))

	_, err := f.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = f.Get(context.Background(), "missing")
	assert.Error(t, err)
}
