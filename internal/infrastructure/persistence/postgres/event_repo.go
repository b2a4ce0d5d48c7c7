package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel/attribute"

	"club-knowledge-api/internal/domain/entity"
	"club-knowledge-api/internal/domain/repository"
)

// searchSimilarSQL 余弦相似度排序，返回字段与检索片段一致
const searchSimilarSQL = `SELECT name_of_event, event_domain, date_of_event::text AS date_of_event,
	time_of_event, venue, description_insights, 1 - (embedding <=> ?) AS similarity
FROM events
WHERE embedding IS NOT NULL
ORDER BY embedding <=> ?
LIMIT ?`

// EventRepository 活动仓储实现
type EventRepository struct {
	client *Client
}

var _ repository.EventRepository = (*EventRepository)(nil)

// NewEventRepository 创建活动仓储，client 为 nil 时所有操作返回 ErrUnavailable
func NewEventRepository(client *Client) *EventRepository {
	return &EventRepository{client: client}
}

// Query 执行路由器的固定语句
func (r *EventRepository) Query(ctx context.Context, stmt string, args ...any) (*repository.Rows, error) {
	if r.client == nil {
		return nil, repository.ErrUnavailable
	}
	ctx, span := tracer.Start(ctx, "postgres.EventRepository.Query")
	defer span.End()

	rows, err := r.client.sqlDB.QueryContext(ctx, stmt, args...)
	if err != nil {
		span.RecordError(err)
		return nil, classify(err)
	}
	result, err := collectRows(rows)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", len(result.Values)))
	return result, nil
}

// QueryReadOnly 在 READ ONLY 事务中执行外部生成的语句，结束后总是回滚
func (r *EventRepository) QueryReadOnly(ctx context.Context, timeout time.Duration, stmt string, args ...any) (*repository.Rows, error) {
	if r.client == nil {
		return nil, repository.ErrUnavailable
	}
	ctx, span := tracer.Start(ctx, "postgres.EventRepository.QueryReadOnly")
	span.SetAttributes(attribute.Int64("statement_timeout_ms", timeout.Milliseconds()))
	defer span.End()

	tx, err := r.client.sqlDB.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		span.RecordError(err)
		return nil, classify(err)
	}
	defer func() { _ = tx.Rollback() }()

	if timeout > 0 {
		if _, err := tx.ExecContext(ctx, statementTimeoutSQL(timeout)); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to set statement timeout: %w", classify(err))
		}
	}

	rows, err := tx.QueryContext(ctx, stmt, args...)
	if err != nil {
		span.RecordError(err)
		return nil, classify(err)
	}
	result, err := collectRows(rows)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", len(result.Values)))
	return result, nil
}

// statementTimeoutSQL SET LOCAL 不接受参数占位符，毫秒数由 Duration 生成
func statementTimeoutSQL(timeout time.Duration) string {
	ms := timeout.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("SET LOCAL statement_timeout = %d", ms)
}

func collectRows(rows *sql.Rows) (*repository.Rows, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, classify(err)
	}

	result := &repository.Rows{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", classify(err))
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Values = append(result.Values, values)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return result, nil
}

// SearchSimilar 按余弦距离返回最近的 limit 条活动
func (r *EventRepository) SearchSimilar(ctx context.Context, vector []float32, limit int) ([]*entity.EventMatch, error) {
	if r.client == nil {
		return nil, repository.ErrUnavailable
	}
	ctx, span := tracer.Start(ctx, "postgres.EventRepository.SearchSimilar")
	span.SetAttributes(attribute.Int("top_k", limit))
	defer span.End()

	vec := pgvector.NewVector(vector)
	var matches []*entity.EventMatch
	if err := getDB(ctx, r.client.db).Raw(searchSimilarSQL, vec, vec, limit).Scan(&matches).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search events: %w", classify(err))
	}
	return matches, nil
}

// Create 写入活动
func (r *EventRepository) Create(ctx context.Context, event *entity.Event) error {
	if r.client == nil {
		return repository.ErrUnavailable
	}
	ctx, span := tracer.Start(ctx, "postgres.EventRepository.Create")
	defer span.End()

	if err := getDB(ctx, r.client.db).Create(event).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create event: %w", classify(err))
	}
	return nil
}

// Available 是否配置了数据库
func (r *EventRepository) Available() bool {
	return r != nil && r.client != nil
}

// SearchEvents 实现语义检索端口
func (r *EventRepository) SearchEvents(ctx context.Context, vector []float32, topK int) ([]*entity.EventMatch, error) {
	return r.SearchSimilar(ctx, vector, topK)
}
