// Package ingestion 校验新活动、计算嵌入并在同一事务内写入
package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"club-knowledge-api/internal/application/retrieval"
	"club-knowledge-api/internal/domain/entity"
	"club-knowledge-api/internal/domain/repository"
	"club-knowledge-api/pkg/logger"
	"club-knowledge-api/pkg/metrics"
)

// MessageSaved 写入成功的提示
const MessageSaved = "Event saved successfully."

// MessageConnectionFailed 数据库不可用时的提示
const MessageConnectionFailed = "Database connection failed"

var tracer = otel.Tracer("ingestion")

// Reason 失败原因，HTTP 层据此选择状态码
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonInvalid    Reason = "invalid"
	ReasonConnection Reason = "connection"
	ReasonEmbedding  Reason = "embedding"
	ReasonWrite      Reason = "write"
)

// Result 入库结果
type Result struct {
	OK      bool
	Message string
	Reason  Reason
}

func failure(reason Reason, msg string) Result {
	return Result{Message: msg, Reason: reason}
}

// EventWriter 写入活动
type EventWriter interface {
	Create(ctx context.Context, event *entity.Event) error
}

// Service 可并发调用，不做去重
type Service struct {
	tx        repository.Transactor
	events    EventWriter
	embedder  retrieval.Embedder
	index     retrieval.VectorWriter
	dimension int
}

// NewService index 为 nil 表示只写 events 表
func NewService(tx repository.Transactor, events EventWriter, embedder retrieval.Embedder, index retrieval.VectorWriter, dimension int) *Service {
	return &Service{
		tx:        tx,
		events:    events,
		embedder:  embedder,
		index:     index,
		dimension: dimension,
	}
}

// Add 校验、嵌入并写入；任何一步失败都不会留下部分写入
func (s *Service) Add(ctx context.Context, in Input) Result {
	ctx, span := tracer.Start(ctx, "ingestion.Add")
	defer span.End()

	res := s.add(ctx, in)
	outcome := "ok"
	if !res.OK {
		outcome = string(res.Reason)
		span.SetAttributes(attribute.String("ingestion.reason", outcome))
		logger.Warn(ctx, "event ingestion failed", "reason", outcome, "message", res.Message)
	}
	metrics.IngestionTotal.WithLabelValues(outcome).Inc()
	return res
}

func (s *Service) add(ctx context.Context, in Input) Result {
	ev, err := Normalize(in)
	if err != nil {
		return failure(ReasonInvalid, err.Error())
	}
	if s.tx == nil || s.events == nil {
		return failure(ReasonConnection, MessageConnectionFailed)
	}
	if s.embedder == nil {
		return failure(ReasonEmbedding, "Embedding model unavailable")
	}

	vec, err := s.embedder.Embed(ctx, ev.SearchText)
	if err != nil {
		return failure(ReasonEmbedding, fmt.Sprintf("Embedding failed: %v", err))
	}
	if s.dimension > 0 && len(vec) != s.dimension {
		return failure(ReasonEmbedding, fmt.Sprintf("Embedding failed: dimension %d, expected %d", len(vec), s.dimension))
	}
	ev.Embedding = pgvector.NewVector(vec)

	indexed := false
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.events.Create(ctx, ev); err != nil {
			return err
		}
		if s.index != nil {
			if err := s.index.IndexEvent(ctx, ev); err != nil {
				return fmt.Errorf("failed to index event: %w", err)
			}
			indexed = true
		}
		return nil
	})
	if err != nil {
		if indexed {
			s.removeIndexed(ctx, ev)
		}
		if errors.Is(err, repository.ErrUnavailable) {
			return failure(ReasonConnection, MessageConnectionFailed)
		}
		return failure(ReasonWrite, err.Error())
	}

	logger.Info(ctx, "event saved", "event_id", ev.EventID, "id", ev.ID)
	return Result{OK: true, Reason: ReasonNone, Message: MessageSaved}
}

// removeIndexed 行已回滚，删除向量索引中的对应记录
func (s *Service) removeIndexed(ctx context.Context, ev *entity.Event) {
	if err := s.index.RemoveEvent(context.WithoutCancel(ctx), ev); err != nil {
		logger.Error(ctx, "failed to remove vector of rolled back event", err, "id", ev.ID)
		return
	}
	logger.Warn(ctx, "removed vector of rolled back event", "id", ev.ID)
}
