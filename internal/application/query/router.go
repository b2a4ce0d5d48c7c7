// Package query 将自然语言问题路由到结构化查询或语义检索并组织答案
package query

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"club-knowledge-api/internal/application/retrieval"
	"club-knowledge-api/internal/workflow/prompt"
	apperrors "club-knowledge-api/pkg/errors"
	"club-knowledge-api/pkg/logger"
	"club-knowledge-api/pkg/metrics"
)

// NoInformation 无法作答时的固定回复
const NoInformation = "I do not have that information."

var tracer = otel.Tracer("query")

// Answerer 问答策略
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Retriever 检索能力
type Retriever interface {
	Structured(ctx context.Context, stmt retrieval.Statement) retrieval.RowSet
	Semantic(ctx context.Context, text string) retrieval.Passages
}

// Generator 生成式模型，未配置 API Key 时 Available 为 false
type Generator interface {
	Available() bool
	Generate(ctx context.Context, msgs []*schema.Message) (string, error)
}

// Options 路由器选项
type Options struct {
	// ComposeAnswers 语义兜底时由模型组织答案，否则直接返回检索片段
	ComposeAnswers  bool
	ContextMaxChars int
	// StatementTimeout 模型生成语句的执行超时
	StatementTimeout time.Duration
}

// Router 基于关键词规则的问答，规则见 DefaultRules
type Router struct {
	retriever Retriever
	generator Generator
	prompts   *prompt.Registry
	opts      Options
	rules     []Rule
}

// NewRouter generator 可为 nil
func NewRouter(retriever Retriever, generator Generator, prompts *prompt.Registry, opts Options) *Router {
	return &Router{
		retriever: retriever,
		generator: generator,
		prompts:   prompts,
		opts:      opts,
		rules:     DefaultRules(),
	}
}

// Route 返回第一个命中的规则
func (r *Router) Route(q Question) Rule {
	for _, rule := range r.rules {
		if rule.Match(q) {
			return rule
		}
	}
	return r.rules[len(r.rules)-1]
}

// Answer 按规则顺序选择检索方式并返回答案
func (r *Router) Answer(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", apperrors.ErrEmptyQuestion
	}

	q := Analyze(question)
	rule := r.Route(q)

	ctx, span := tracer.Start(ctx, "query.Router.Answer")
	span.SetAttributes(attribute.String("query.route", rule.Name))
	defer span.End()

	start := time.Now()
	answer := rule.Handle(ctx, r, q)
	metrics.QueryRouteTotal.WithLabelValues(rule.Name).Inc()
	metrics.QueryDuration.WithLabelValues(rule.Name).Observe(time.Since(start).Seconds())

	logger.Debug(ctx, "question routed", "route", rule.Name)
	return answer, nil
}

func (r *Router) generatorAvailable() bool {
	return r.generator != nil && r.generator.Available()
}

// answerSemantic 语义兜底
func (r *Router) answerSemantic(ctx context.Context, question string) string {
	if !r.generatorAvailable() {
		return NoInformation
	}
	ps := r.retriever.Semantic(ctx, question)
	if !ps.OK() {
		return NoInformation
	}

	passages := ps.Context()
	if !r.opts.ComposeAnswers {
		return passages
	}
	return compose(ctx, r.generator, r.prompts, r.opts, question, passages, "")
}

// compose 调用生成式模型，失败时返回字面上下文
func compose(ctx context.Context, gen Generator, prompts *prompt.Registry, opts Options, question, contextText, sql string) string {
	if sql == "" {
		sql = "N/A"
	}
	msgs, err := prompts.Render(ctx, prompt.PromptAnswerV1, map[string]any{
		"question": question,
		"context":  retrieval.BuildPromptContext(contextText, opts.ContextMaxChars),
		"sql":      sql,
	})
	if err != nil {
		logger.Error(ctx, "failed to render answer prompt", err)
		return contextText
	}
	answer, err := gen.Generate(ctx, msgs)
	if err != nil || strings.TrimSpace(answer) == "" {
		logger.Warn(ctx, "answer generation failed, returning context", "error", errString(err))
		return contextText
	}
	return answer
}

func errString(err error) string {
	if err == nil {
		return "empty answer"
	}
	return err.Error()
}
