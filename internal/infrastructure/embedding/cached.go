package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"club-knowledge-api/internal/infrastructure/persistence/redis"
	"club-knowledge-api/pkg/logger"
	"club-knowledge-api/pkg/metrics"
)

// TextEmbedder 单文本嵌入能力
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Cache 读穿缓存，cached 表示结果直接来自缓存
type Cache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) (data []byte, cached bool, err error)
}

// modelError 下游模型的失败，与缓存故障区分；合并加载时随结果一起共享
type modelError struct {
	err error
}

func (e *modelError) Error() string { return e.err.Error() }

func (e *modelError) Unwrap() error { return e.err }

// CachedEmbedder 以 model + sha256(text) 为键缓存嵌入结果
// 缓存不可用时直接调用下游
type CachedEmbedder struct {
	next  TextEmbedder
	cache Cache
	model string
	ttl   time.Duration
}

func NewCachedEmbedder(next TextEmbedder, cache Cache, model string, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{next: next, cache: cache, model: model, ttl: ttl}
}

// Embed 优先读取缓存
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	sum := sha256.Sum256([]byte(text))
	key := redis.BuildEmbeddingKey(c.model, hex.EncodeToString(sum[:]))

	loaded := false
	raw, cached, err := c.cache.GetOrLoadSafe(ctx, key, c.ttl, func() (interface{}, error) {
		loaded = true
		vec, err := c.next.Embed(ctx, text)
		if err != nil {
			return nil, &modelError{err: err}
		}
		return vec, nil
	})
	if err != nil {
		var me *modelError
		if errors.As(err, &me) {
			return nil, me.err
		}
		logger.Warn(ctx, "embedding cache unavailable, bypassing", "error", err.Error())
		metrics.EmbeddingCacheTotal.WithLabelValues("error").Inc()
		return c.next.Embed(ctx, text)
	}

	switch {
	case cached:
		metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
	case loaded:
		metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()
	default:
		metrics.EmbeddingCacheTotal.WithLabelValues("shared").Inc()
	}

	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil, fmt.Errorf("failed to decode cached embedding: %w", err)
	}
	return vec, nil
}
