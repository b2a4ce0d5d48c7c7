//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"club-knowledge-api/internal/application/ingestion"
	"club-knowledge-api/internal/config"
	"club-knowledge-api/internal/infrastructure/llm"
	"club-knowledge-api/internal/infrastructure/persistence/postgres"
	"club-knowledge-api/internal/interfaces/http/handler"
	"club-knowledge-api/internal/interfaces/http/router"
	"club-knowledge-api/internal/workflow/prompt"
)

// InitializeApp 初始化 HTTP 服务
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		OptionalPostgresSet,
		RedisSet,
		MilvusAppSet,
		EmbeddingSet,
		QuerySet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeAgent 初始化命令行问答所需依赖
func InitializeAgent(ctx context.Context, cfg *config.Config) (*Agent, func(), error) {
	wire.Build(
		OptionalPostgresSet,
		RedisSet,
		MilvusAppSet,
		EmbeddingSet,
		QuerySet,
		wire.Struct(new(Agent), "*"),
	)
	return nil, nil, nil
}

// InitializeBootstrap 初始化建表与管理员账号所需依赖
func InitializeBootstrap(ctx context.Context, cfg *config.Config) (*Bootstrap, func(), error) {
	wire.Build(
		ProvidePostgresClient,
		postgres.NewUserRepository,
		ProvideMilvusClientOptional,
		ProvideMilvusRepositoryOptional,
		wire.Struct(new(Bootstrap), "*"),
	)
	return nil, nil, nil
}

// OptionalPostgresSet 数据库可缺省
var OptionalPostgresSet = wire.NewSet(
	ProvidePostgresClientOptional,
	ProvideTransactor,
	postgres.NewEventRepository,
	postgres.NewUserRepository,
)

// RedisSet Redis 可缺省
var RedisSet = wire.NewSet(
	ProvideRedisClientOptional,
	ProvideRateLimiter,
)

// MilvusAppSet Milvus 可缺省
var MilvusAppSet = wire.NewSet(
	ProvideMilvusClientOptional,
	ProvideMilvusRepositoryOptional,
	ProvideVectorIndex,
	ProvideVectorWriter,
)

// EmbeddingSet 懒加载 Embedder 与可选缓存
var EmbeddingSet = wire.NewSet(
	ProvideEmbeddingProvider,
	ProvideEmbedder,
)

// QuerySet 检索、问答与入库
var QuerySet = wire.NewSet(
	ProvideRetriever,
	llm.NewEinoFactory,
	ProvideChatClient,
	prompt.NewRegistry,
	ProvideAnswerer,
	ProvideIngestionService,
)

// RouterSet HTTP 处理器与路由
var RouterSet = wire.NewSet(
	ProvideJWTManager,
	ProvideAuthHandler,
	ProvideHealthHandler,
	handler.NewChatHandler,
	handler.NewEventHandler,
	wire.Bind(new(handler.EventIngestor), new(*ingestion.Service)),
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)
