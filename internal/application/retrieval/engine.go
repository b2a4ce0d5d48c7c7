// Package retrieval 提供结构化查询与语义检索，失败统一归类为 Failure
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"club-knowledge-api/internal/domain/repository"
	"club-knowledge-api/pkg/logger"
	"club-knowledge-api/pkg/metrics"
)

// DefaultTopK 语义检索默认返回条数
const DefaultTopK = 5

var tracer = otel.Tracer("retrieval")

// Statement 参数化查询语句
type Statement struct {
	SQL  string
	Args []any
	// ReadOnly 外部生成的语句在只读事务中执行
	ReadOnly bool
	Timeout  time.Duration
}

// Retriever 无状态，可并发使用
type Retriever struct {
	events   EventStore
	index    VectorIndex
	embedder Embedder
	backend  string
	topK     int
}

// NewRetriever backend 仅用于指标标签
func NewRetriever(events EventStore, index VectorIndex, embedder Embedder, backend string, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		events:   events,
		index:    index,
		embedder: embedder,
		backend:  backend,
		topK:     topK,
	}
}

// Structured 执行参数化查询
func (r *Retriever) Structured(ctx context.Context, stmt Statement) RowSet {
	ctx, span := tracer.Start(ctx, "retrieval.Structured")
	defer span.End()

	if r.events == nil {
		return r.structuredFailure(ctx, &Failure{Kind: FailureConnection, Err: repository.ErrUnavailable})
	}

	var (
		rows *repository.Rows
		err  error
	)
	if stmt.ReadOnly {
		span.SetAttributes(attribute.Bool("read_only", true))
		rows, err = r.events.QueryReadOnly(ctx, stmt.Timeout, stmt.SQL, stmt.Args...)
	} else {
		rows, err = r.events.Query(ctx, stmt.SQL, stmt.Args...)
	}
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, repository.ErrUnavailable) {
			return r.structuredFailure(ctx, &Failure{Kind: FailureConnection, Err: err})
		}
		return r.structuredFailure(ctx, &Failure{
			Kind:   FailureQuery,
			Detail: fmt.Sprintf("SQL error: %v", err),
			Err:    err,
		})
	}
	if rows.Len() == 0 {
		return r.structuredFailure(ctx, &Failure{Kind: FailureNoResults})
	}

	span.SetAttributes(attribute.Int("rows", rows.Len()))
	metrics.RetrievalTotal.WithLabelValues("structured", "ok").Inc()
	return RowSet{Columns: rows.Columns, Rows: rows.Values}
}

func (r *Retriever) structuredFailure(ctx context.Context, f *Failure) RowSet {
	metrics.RetrievalTotal.WithLabelValues("structured", f.Kind.String()).Inc()
	if f.Kind != FailureNoResults {
		logger.Warn(ctx, "structured query failed", "kind", f.Kind.String(), "error", f.Error())
	}
	return RowSet{Failure: f}
}

// Semantic 清洗问题、嵌入并返回最相似的 topK 条活动
func (r *Retriever) Semantic(ctx context.Context, question string) Passages {
	ctx, span := tracer.Start(ctx, "retrieval.Semantic")
	defer span.End()

	if r.index == nil || !available(r.index) {
		return r.semanticFailure(ctx, &Failure{Kind: FailureConnection, Err: ErrVectorDisabled})
	}
	if r.embedder == nil {
		return r.semanticFailure(ctx, &Failure{Kind: FailureEmbedding, Err: errors.New("embedder not configured")})
	}

	query := Clean(question)
	span.SetAttributes(attribute.String("query.cleaned", query))

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		span.RecordError(err)
		return r.semanticFailure(ctx, &Failure{Kind: FailureEmbedding, Err: err})
	}

	start := time.Now()
	matches, err := r.index.SearchEvents(ctx, vec, r.topK)
	metrics.VectorSearchDuration.WithLabelValues(r.backend).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, repository.ErrUnavailable) || errors.Is(err, ErrVectorDisabled) {
			return r.semanticFailure(ctx, &Failure{Kind: FailureConnection, Err: err})
		}
		return r.semanticFailure(ctx, &Failure{
			Kind:   FailureQuery,
			Detail: fmt.Sprintf("Error %v", err),
			Err:    err,
		})
	}

	items := make([]Passage, 0, len(matches))
	for _, m := range matches {
		if m == nil {
			continue
		}
		items = append(items, Passage{
			Name:        m.Name,
			Domain:      m.Domain,
			Date:        m.Date,
			Time:        m.Time,
			Venue:       m.Venue,
			Description: strings.TrimSpace(m.Description),
			Similarity:  m.Similarity,
		})
	}
	if len(items) == 0 {
		return r.semanticFailure(ctx, &Failure{Kind: FailureNoMatches})
	}

	span.SetAttributes(attribute.Int("matches", len(items)))
	metrics.RetrievalTotal.WithLabelValues("semantic", "ok").Inc()
	return Passages{Items: items}
}

// available 后端实现 Available 时据此判断，未配置的后端不必先嵌入
func available(index VectorIndex) bool {
	if a, ok := index.(interface{ Available() bool }); ok {
		return a.Available()
	}
	return true
}

func (r *Retriever) semanticFailure(ctx context.Context, f *Failure) Passages {
	metrics.RetrievalTotal.WithLabelValues("semantic", f.Kind.String()).Inc()
	if f.Kind != FailureNoMatches {
		logger.Warn(ctx, "semantic query failed", "kind", f.Kind.String(), "error", f.Error())
	}
	return Passages{Failure: f}
}
