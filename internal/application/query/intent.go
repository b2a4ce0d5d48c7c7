package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"club-knowledge-api/internal/application/retrieval"
	"club-knowledge-api/internal/workflow/node"
	"club-knowledge-api/internal/workflow/prompt"
	apperrors "club-knowledge-api/pkg/errors"
	"club-knowledge-api/pkg/logger"
	"club-knowledge-api/pkg/metrics"
)

// 意图类型
const (
	IntentSemantic   = "semantic"
	IntentStructured = "structured"
)

// Intent 模型输出的意图
type Intent struct {
	Intent string `json:"intent"`
	Query  string `json:"query"`
}

// ParseIntent 从模型输出中截取第一个 JSON 对象
func ParseIntent(text string) (Intent, error) {
	var in Intent
	raw, ok := node.ExtractJSONObject(text)
	if !ok {
		return in, fmt.Errorf("no JSON object in model output")
	}
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return in, fmt.Errorf("invalid intent JSON: %w", err)
	}
	in.Intent = strings.ToLower(strings.TrimSpace(in.Intent))
	in.Query = strings.TrimSpace(in.Query)
	return in, nil
}

// LLMAnswerer 由模型判断意图，模型不可用或意图无效时交给 fallback
type LLMAnswerer struct {
	retriever Retriever
	generator Generator
	prompts   *prompt.Registry
	fallback  Answerer
	opts      Options
}

func NewLLMAnswerer(retriever Retriever, generator Generator, prompts *prompt.Registry, fallback Answerer, opts Options) *LLMAnswerer {
	return &LLMAnswerer{
		retriever: retriever,
		generator: generator,
		prompts:   prompts,
		fallback:  fallback,
		opts:      opts,
	}
}

// Answer 解析意图、检索上下文，再由模型作答
func (a *LLMAnswerer) Answer(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", apperrors.ErrEmptyQuestion
	}
	if a.generator == nil || !a.generator.Available() {
		return a.fallback.Answer(ctx, question)
	}

	ctx, span := tracer.Start(ctx, "query.LLMAnswerer.Answer")
	defer span.End()

	intent, err := a.parse(ctx, question)
	if err != nil {
		logger.Warn(ctx, "intent parsing failed, using rule router", "error", err.Error())
		return a.fallback.Answer(ctx, question)
	}

	var contextText, sql string
	switch {
	case intent.Intent == IntentSemantic && intent.Query != "":
		contextText = a.retriever.Semantic(ctx, intent.Query).Context()
	case intent.Intent == IntentStructured && IsReadOnlySelect(intent.Query):
		sql = intent.Query
		rs := a.retriever.Structured(ctx, retrieval.Statement{
			SQL:      sql,
			ReadOnly: true,
			Timeout:  a.opts.StatementTimeout,
		})
		contextText = "Database returned: " + RenderRows(rs)
	default:
		logger.Warn(ctx, "unusable intent, using rule router", "intent", intent.Intent)
		return a.fallback.Answer(ctx, question)
	}
	metrics.QueryRouteTotal.WithLabelValues("llm_" + intent.Intent).Inc()

	return compose(ctx, a.generator, a.prompts, a.opts, question, contextText, sql), nil
}

func (a *LLMAnswerer) parse(ctx context.Context, question string) (Intent, error) {
	msgs, err := a.prompts.Render(ctx, prompt.PromptIntentParseV1, map[string]any{"question": question})
	if err != nil {
		return Intent{}, err
	}
	out, err := a.generator.Generate(ctx, msgs)
	if err != nil {
		return Intent{}, err
	}
	return ParseIntent(out)
}
