package retrieval

import (
	"context"
	"time"

	"club-knowledge-api/internal/domain/entity"
	"club-knowledge-api/internal/domain/repository"
)

// Embedder 文本嵌入能力，测试中可用固定向量替换
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EventStore 结构化查询所需的最小依赖
type EventStore interface {
	Query(ctx context.Context, stmt string, args ...any) (*repository.Rows, error)
	QueryReadOnly(ctx context.Context, timeout time.Duration, stmt string, args ...any) (*repository.Rows, error)
}

// VectorIndex 语义检索后端（pgvector 或 Milvus）
type VectorIndex interface {
	SearchEvents(ctx context.Context, vector []float32, topK int) ([]*entity.EventMatch, error)
}

// VectorWriter 入库时同步写入的向量索引，不参与数据库事务
type VectorWriter interface {
	IndexEvent(ctx context.Context, event *entity.Event) error
	// RemoveEvent 数据库事务未提交时撤销已写入的向量
	RemoveEvent(ctx context.Context, event *entity.Event) error
}
