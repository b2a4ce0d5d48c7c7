// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"club-knowledge-api/internal/infrastructure/persistence/milvus"
	"club-knowledge-api/internal/infrastructure/persistence/postgres"
	"club-knowledge-api/internal/infrastructure/persistence/redis"
)

// RootStatus 根路径返回的服务状态
const RootStatus = "Club Knowledge Agent is active"

// ModelStatus 模型可用性
type ModelStatus interface {
	Available() bool
}

// EmbedderStatus 嵌入模型加载状态
type EmbedderStatus interface {
	Loaded() bool
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	pg       *postgres.Client
	redis    *redis.Client
	milvus   *milvus.Client
	embedder EmbedderStatus
	llm      ModelStatus
}

// NewHealthHandler 创建健康检查处理器，未配置的依赖传 nil
func NewHealthHandler(pg *postgres.Client, redisClient *redis.Client, milvusClient *milvus.Client, embedder EmbedderStatus, llm ModelStatus) *HealthHandler {
	return &HealthHandler{
		pg:       pg,
		redis:    redisClient,
		milvus:   milvusClient,
		embedder: embedder,
		llm:      llm,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Root 服务根路径
// @Summary 服务状态
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router / [get]
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: RootStatus})
}

// Health 健康检查接口
// @Summary 健康检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Live 存活检查接口
// @Summary 存活检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// probe 执行一次带耗时的依赖检查
func probe(ctx context.Context, check func(context.Context) error) *readinessCheck {
	start := time.Now()
	err := check(ctx)
	res := &readinessCheck{LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		res.Status = "error"
		res.Error = err.Error()
		return res
	}
	res.Status = "ok"
	return res
}

// Ready 就绪检查接口
// 已配置的数据库不可达时返回 503；未配置的依赖只标记为 disabled，服务以降级模式就绪
// @Summary 就绪检查
// @Tags System
// @Produce json
// @Success 200 {object} readinessResponse
// @Failure 503 {object} readinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]*readinessCheck{
		"postgres":  {Status: "disabled"},
		"redis":     {Status: "disabled"},
		"milvus":    {Status: "disabled"},
		"embedding": {Status: "not_loaded"},
		"llm":       {Status: "disabled"},
	}
	ready := true
	degraded := false

	if h.pg != nil {
		checks["postgres"] = probe(ctx, h.pg.HealthCheck)
		ready = checks["postgres"].Status == "ok"
	} else {
		degraded = true
	}

	// Redis 与 Milvus 不影响就绪态
	if h.redis != nil {
		checks["redis"] = probe(ctx, h.redis.HealthCheck)
		if checks["redis"].Status != "ok" {
			checks["redis"].Status = "degraded"
			degraded = true
		}
	}
	if h.milvus != nil {
		checks["milvus"] = probe(ctx, h.milvus.HealthCheck)
		if checks["milvus"].Status != "ok" {
			checks["milvus"].Status = "degraded"
			degraded = true
		}
	}

	if h.embedder != nil && h.embedder.Loaded() {
		checks["embedding"].Status = "ok"
	}
	if h.llm != nil && h.llm.Available() {
		checks["llm"].Status = "ok"
	}

	resp := readinessResponse{Status: "ok", Checks: checks}
	switch {
	case !ready:
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	case degraded:
		resp.Status = "degraded"
	}
	c.JSON(http.StatusOK, resp)
}
