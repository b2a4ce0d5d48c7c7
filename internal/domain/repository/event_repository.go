package repository

import (
	"context"
	"time"

	"club-knowledge-api/internal/domain/entity"
)

// EventRepository 活动仓储接口
type EventRepository interface {
	// Query 执行只读语句，参数使用 $n 占位符
	Query(ctx context.Context, stmt string, args ...any) (*Rows, error)

	// QueryReadOnly 在只读事务中执行，timeout 大于 0 时设置语句超时
	QueryReadOnly(ctx context.Context, timeout time.Duration, stmt string, args ...any) (*Rows, error)

	// SearchSimilar 按向量距离返回最近的活动
	SearchSimilar(ctx context.Context, vector []float32, limit int) ([]*entity.EventMatch, error)

	// Create 写入活动（含嵌入）
	Create(ctx context.Context, event *entity.Event) error
}
