package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	einoembedding "github.com/cloudwego/eino/components/embedding"

	"club-knowledge-api/pkg/metrics"
)

// ErrNotConfigured 嵌入模型未配置
var ErrNotConfigured = errors.New("embedding model not configured")

// Factory 创建底层 Embedder，首次调用 Embed 时执行
type Factory func(ctx context.Context) (einoembedding.Embedder, error)

// Provider 进程级懒加载 Embedder
// 底层模型在首次使用时创建且只创建一次，之后只读共享
type Provider struct {
	name      string
	model     string
	dimension int
	factory   Factory

	mu       sync.RWMutex
	embedder einoembedding.Embedder
}

// NewProvider 创建懒加载 Embedder，factory 为 nil 表示未配置
func NewProvider(name, model string, dimension int, factory Factory) *Provider {
	return &Provider{
		name:      name,
		model:     model,
		dimension: dimension,
		factory:   factory,
	}
}

// Model 模型标识
func (p *Provider) Model() string {
	return p.model
}

// Loaded 底层模型是否已创建
func (p *Provider) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.embedder != nil
}

// load 双重检查加锁，创建失败不缓存错误，下次调用重试
func (p *Provider) load(ctx context.Context) (einoembedding.Embedder, error) {
	p.mu.RLock()
	e := p.embedder
	p.mu.RUnlock()
	if e != nil {
		return e, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.embedder != nil {
		return p.embedder, nil
	}
	if p.factory == nil {
		return nil, ErrNotConfigured
	}

	e, err := p.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedding model %s: %w", p.model, err)
	}
	p.embedder = e
	return e, nil
}

// Embed 将文本转换为定长向量
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	e, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	vectors, err := e.EmbedStrings(ctx, []string{text})
	metrics.EmbeddingDuration.WithLabelValues(p.name).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding model returned %d vectors", len(vectors))
	}

	vec := make([]float32, len(vectors[0]))
	for i, v := range vectors[0] {
		vec[i] = float32(v)
	}
	if p.dimension > 0 && len(vec) != p.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), p.dimension)
	}
	return vec, nil
}
