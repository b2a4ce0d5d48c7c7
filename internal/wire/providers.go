package wire

import (
	"context"
	"time"

	einoembedding "github.com/cloudwego/eino/components/embedding"

	"club-knowledge-api/internal/application/ingestion"
	"club-knowledge-api/internal/application/query"
	"club-knowledge-api/internal/application/retrieval"
	"club-knowledge-api/internal/config"
	"club-knowledge-api/internal/domain/repository"
	"club-knowledge-api/internal/infrastructure/embedding"
	"club-knowledge-api/internal/infrastructure/llm"
	"club-knowledge-api/internal/infrastructure/persistence/milvus"
	"club-knowledge-api/internal/infrastructure/persistence/postgres"
	"club-knowledge-api/internal/infrastructure/persistence/redis"
	"club-knowledge-api/internal/interfaces/http/handler"
	"club-knowledge-api/internal/interfaces/http/middleware"
	"club-knowledge-api/internal/workflow/prompt"
	"club-knowledge-api/pkg/logger"
	"club-knowledge-api/pkg/utils"
)

// 模型调用所属的工作流名，用于指标标签
const workflowQuery = "query"

// ProvidePostgresClient 提供 PostgreSQL 客户端，bootstrap 要求数据库可用
func ProvidePostgresClient(ctx context.Context, cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvidePostgresClientOptional 未配置连接串时返回 nil，数据库路径降级
func ProvidePostgresClientOptional(ctx context.Context, cfg *config.Config) (*postgres.Client, func(), error) {
	if !cfg.Database.Postgres.Configured() {
		logger.Warn(ctx, "database url not configured, database features disabled")
		return nil, func() {}, nil
	}
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Warn(ctx, "postgres not available, database features disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	// 启动时不可达不影响启动，每次请求重新建立连接
	if err := client.Ping(ctx); err != nil {
		logger.Warn(ctx, "postgres unreachable at startup", "error", err.Error())
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideTransactor 无数据库时返回 nil，入库直接报告连接失败
func ProvideTransactor(client *postgres.Client) repository.Transactor {
	if client == nil {
		return nil
	}
	return postgres.NewTxManager(client)
}

// ProvideRedisClientOptional Redis 不可用时关闭缓存与限流
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, cache and rate limit disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideRateLimiter 无 Redis 时返回 nil 接口
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

// ProvideMilvusClientOptional 不可达时不阻塞启动
func ProvideMilvusClientOptional(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	if !cfg.Vector.Milvus.Enabled {
		return nil, func() {}, nil
	}
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Warn(ctx, "milvus not available, secondary index disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideMilvusRepositoryOptional 确保集合存在，失败时仍返回仓储，由检索结果报告错误
func ProvideMilvusRepositoryOptional(ctx context.Context, client *milvus.Client, cfg *config.Config) *milvus.Repository {
	if client == nil {
		return nil
	}
	repo := milvus.NewRepository(client, cfg.Embedding.Dimension)
	if err := repo.EnsureEventsCollection(ctx); err != nil {
		logger.Warn(ctx, "failed to ensure milvus collection", "error", err.Error())
	}
	return repo
}

// embeddingFactory 根据 provider 选择底层 Embedder，缺少必要配置时返回 nil
func embeddingFactory(cfg *config.Config) embedding.Factory {
	ec := cfg.Embedding
	switch ec.Provider {
	case config.EmbeddingProviderOpenAI:
		if ec.APIKey == "" || ec.BaseURL == "" {
			// 与问答模型共用 Gemini 的 OpenAI 兼容端点
			if _, p, ok := cfg.LLM.Default(); ok {
				if ec.APIKey == "" {
					ec.APIKey = p.APIKey
				}
				if ec.BaseURL == "" {
					ec.BaseURL = p.BaseURL
				}
			}
		}
		if ec.APIKey == "" {
			return nil
		}
		return func(ctx context.Context) (einoembedding.Embedder, error) {
			return embedding.NewEinoEmbedder(ctx, &ec)
		}
	default:
		if ec.Endpoint == "" {
			return nil
		}
		return func(context.Context) (einoembedding.Embedder, error) {
			return embedding.NewClient(&ec)
		}
	}
}

// ProvideEmbeddingProvider 懒加载的进程级 Embedder
func ProvideEmbeddingProvider(ctx context.Context, cfg *config.Config) *embedding.Provider {
	factory := embeddingFactory(cfg)
	if factory == nil {
		logger.Warn(ctx, "embedding model not configured, semantic search disabled", "provider", cfg.Embedding.Provider)
	}
	return embedding.NewProvider(cfg.Embedding.Provider, cfg.Embedding.Model, cfg.Embedding.Dimension, factory)
}

// ProvideEmbedder 有 Redis 时叠加嵌入缓存
func ProvideEmbedder(provider *embedding.Provider, redisClient *redis.Client, cfg *config.Config) retrieval.Embedder {
	if redisClient == nil {
		return provider
	}
	ttl := cfg.Embedding.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return embedding.NewCachedEmbedder(provider, redis.NewCache(redisClient), provider.Model(), ttl)
}

// ProvideVectorIndex 语义检索读取的后端
func ProvideVectorIndex(ctx context.Context, cfg *config.Config, events *postgres.EventRepository, repo *milvus.Repository) retrieval.VectorIndex {
	if cfg.Vector.Backend == config.VectorBackendMilvus {
		if repo == nil {
			logger.Warn(ctx, "vector backend is milvus but milvus is unavailable")
		}
		return milvus.NewEventIndex(repo)
	}
	return events
}

// ProvideVectorWriter 入库时的二级索引，无 Milvus 时返回 nil 接口
func ProvideVectorWriter(repo *milvus.Repository) retrieval.VectorWriter {
	if repo == nil {
		return nil
	}
	return milvus.NewEventIndex(repo)
}

// ProvideRetriever 提供检索器
func ProvideRetriever(cfg *config.Config, events *postgres.EventRepository, index retrieval.VectorIndex, embedder retrieval.Embedder) *retrieval.Retriever {
	return retrieval.NewRetriever(events, index, embedder, cfg.Vector.Backend, cfg.Vector.TopK)
}

// ProvideChatClient 默认提供商的问答客户端
func ProvideChatClient(ctx context.Context, cfg *config.Config, factory *llm.EinoFactory) *llm.ChatClient {
	client := llm.NewChatClient(factory, cfg.LLM.DefaultProvider, workflowQuery)
	if !client.Available() {
		logger.Warn(ctx, "llm api key not configured, generative answers disabled")
	}
	return client
}

// ProvideAnswerer 按配置选择规则路由或模型意图解析
func ProvideAnswerer(cfg *config.Config, retriever *retrieval.Retriever, chat *llm.ChatClient, prompts *prompt.Registry) query.Answerer {
	opts := query.Options{
		ComposeAnswers:   cfg.Query.ComposeAnswers,
		ContextMaxChars:  cfg.Query.ContextMaxChars,
		StatementTimeout: cfg.Query.StatementTimeout,
	}
	rules := query.NewRouter(retriever, chat, prompts, opts)
	if cfg.Query.Strategy == config.QueryStrategyLLM {
		return query.NewLLMAnswerer(retriever, chat, prompts, rules, opts)
	}
	return rules
}

// ProvideIngestionService 提供入库服务
func ProvideIngestionService(cfg *config.Config, tx repository.Transactor, events *postgres.EventRepository, embedder retrieval.Embedder, writer retrieval.VectorWriter) *ingestion.Service {
	return ingestion.NewService(tx, events, embedder, writer, cfg.Embedding.Dimension)
}

// ProvideJWTManager 提供令牌管理器
func ProvideJWTManager(ctx context.Context, cfg *config.Config) *utils.JWTManager {
	if cfg.Security.Auth.Enabled && cfg.Security.JWT.Secret == "" {
		logger.Warn(ctx, "auth enabled without JWT_SECRET, admin tokens cannot be verified securely")
	}
	return utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer)
}

// ProvideAuthHandler 提供认证处理器
func ProvideAuthHandler(jwtManager *utils.JWTManager, users *postgres.UserRepository, cfg *config.Config) *handler.AuthHandler {
	return handler.NewAuthHandler(jwtManager, users, cfg.Security.JWT.Expiration)
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(pg *postgres.Client, redisClient *redis.Client, milvusClient *milvus.Client, provider *embedding.Provider, chat *llm.ChatClient) *handler.HealthHandler {
	return handler.NewHealthHandler(pg, redisClient, milvusClient, provider, chat)
}
