package wire

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-knowledge-api/internal/application/query"
	"club-knowledge-api/internal/config"
	"club-knowledge-api/internal/infrastructure/llm"
	"club-knowledge-api/internal/infrastructure/persistence/postgres"
	"club-knowledge-api/internal/workflow/prompt"
)

func baseConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LLM.DefaultProvider = "gemini"
	cfg.LLM.Providers = map[string]config.ProviderConfig{
		"gemini": {BaseURL: "https://example.test/openai/", Model: "gemini-2.5-flash"},
	}
	cfg.Embedding.Provider = config.EmbeddingProviderHTTP
	cfg.Embedding.Model = "BAAI/bge-base-en-v1.5"
	cfg.Embedding.Dimension = 768
	cfg.Vector.Backend = config.VectorBackendPgvector
	return cfg
}

func TestEmbeddingFactorySelection(t *testing.T) {
	cfg := baseConfig()
	assert.Nil(t, embeddingFactory(cfg), "http provider without endpoint")

	cfg.Embedding.Endpoint = "http://localhost:8081"
	assert.NotNil(t, embeddingFactory(cfg))

	cfg.Embedding.Provider = config.EmbeddingProviderOpenAI
	assert.Nil(t, embeddingFactory(cfg), "openai provider without any api key")

	p := cfg.LLM.Providers["gemini"]
	p.APIKey = "gemini-key"
	cfg.LLM.Providers["gemini"] = p
	assert.NotNil(t, embeddingFactory(cfg), "falls back to the chat provider key")
}

func TestOptionalProvidersDegrade(t *testing.T) {
	ctx := context.Background()
	cfg := baseConfig()

	pg, cleanup, err := ProvidePostgresClientOptional(ctx, cfg)
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, pg)
	assert.Nil(t, ProvideTransactor(pg))

	rc, cleanup2, err := ProvideRedisClientOptional(ctx, cfg)
	require.NoError(t, err)
	defer cleanup2()
	assert.Nil(t, rc)
	assert.Nil(t, ProvideRateLimiter(rc))

	mc, cleanup3, err := ProvideMilvusClientOptional(ctx, cfg)
	require.NoError(t, err)
	defer cleanup3()
	assert.Nil(t, mc)
	assert.Nil(t, ProvideMilvusRepositoryOptional(ctx, mc, cfg))
	assert.Nil(t, ProvideVectorWriter(nil))
}

func TestProvideAnswererStrategy(t *testing.T) {
	ctx := context.Background()
	cfg := baseConfig()
	events := postgres.NewEventRepository(nil)
	provider := ProvideEmbeddingProvider(ctx, cfg)
	embedder := ProvideEmbedder(provider, nil, cfg)
	retriever := ProvideRetriever(cfg, events, ProvideVectorIndex(ctx, cfg, events, nil), embedder)
	chat := ProvideChatClient(ctx, cfg, llm.NewEinoFactory(cfg))
	assert.False(t, chat.Available())

	_, ok := ProvideAnswerer(cfg, retriever, chat, prompt.NewRegistry()).(*query.Router)
	assert.True(t, ok)

	cfg.Query.Strategy = config.QueryStrategyLLM
	_, ok = ProvideAnswerer(cfg, retriever, chat, prompt.NewRegistry()).(*query.LLMAnswerer)
	assert.True(t, ok)
}

func TestInitializeAppWithoutDependencies(t *testing.T) {
	cfg := baseConfig()
	cfg.App.Name = "club-knowledge-api"
	cfg.Security.JWT.Issuer = "club-knowledge-api"

	r, cleanup, err := InitializeApp(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, r.Engine())
}
