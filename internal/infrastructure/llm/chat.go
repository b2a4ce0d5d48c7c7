package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	einoobs "club-knowledge-api/internal/observability/eino"
)

// ModelSource 按名称获取 ChatModel
type ModelSource interface {
	Available(name string) bool
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}

// ChatClient 单轮问答
type ChatClient struct {
	source   ModelSource
	provider string
	workflow string
}

// NewChatClient provider 为空时使用默认提供商
func NewChatClient(source ModelSource, provider, workflow string) *ChatClient {
	return &ChatClient{source: source, provider: provider, workflow: workflow}
}

// Available 是否可以调用模型
func (c *ChatClient) Available() bool {
	return c != nil && c.source != nil && c.source.Available(c.provider)
}

// Complete 以 system + user 两条消息调用模型
func (c *ChatClient) Complete(ctx context.Context, system, user string) (string, error) {
	msgs := make([]*schema.Message, 0, 2)
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, schema.SystemMessage(system))
	}
	msgs = append(msgs, schema.UserMessage(user))
	return c.Generate(ctx, msgs)
}

// Generate 调用模型，返回去除首尾空白的文本
func (c *ChatClient) Generate(ctx context.Context, msgs []*schema.Message) (string, error) {
	if !c.Available() {
		return "", ErrNotConfigured
	}
	m, err := c.source.Get(ctx, c.provider)
	if err != nil {
		return "", err
	}

	ctx = einoobs.WithWorkflowProvider(ctx, c.workflow, c.provider)
	out, err := m.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("llm generate failed: %w", err)
	}
	if out == nil {
		return "", fmt.Errorf("llm returned empty message")
	}
	return strings.TrimSpace(out.Content), nil
}
