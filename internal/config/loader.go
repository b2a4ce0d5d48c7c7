package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// ConfigDirEnv 覆盖配置目录的环境变量
const ConfigDirEnv = "CONFIG_DIR"

// envBindings 部署约定的环境变量，优先于配置文件
var envBindings = map[string][]string{
	"database.postgres.url":          {"NEON_DB_URL", "DATABASE_URL"},
	"llm.providers.gemini.api_key":   {"GEMINI_API_KEY"},
	"embedding.model":                {"EMBEDDING_MODEL"},
	"embedding.api_key":              {"EMBEDDING_API_KEY"},
	"security.jwt.secret":            {"JWT_SECRET"},
	"observability.tracing.endpoint": {"OTEL_EXPORTER_OTLP_ENDPOINT"},
	"cache.redis.password":           {"REDIS_PASSWORD"},
	"vector.milvus.password":         {"MILVUS_PASSWORD"},
}

var placeholder = regexp.MustCompile(`\${(\w+)(:([^}]*))?}`)

// Load 加载配置
// 顺序：默认值 -> configs/config.yaml -> configs/config.<APP_ENV>.yaml -> 环境变量
// 配置文件缺失不是错误，缺少的外部依赖由调用方降级处理
func Load() (*Config, error) {
	dir := os.Getenv(ConfigDirEnv)
	if dir == "" {
		dir = "configs"
	}
	return LoadFrom(dir)
}

// LoadFrom 从指定目录加载配置
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := loadConfigFile(v, dir+"/config.yaml"); err != nil {
		return nil, err
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := loadConfigFile(v, fmt.Sprintf("%s/config.%s.yaml", dir, env)); err != nil {
		return nil, err
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	normalize(&cfg)
	return &cfg, nil
}

// loadConfigFile 读取文件并替换 ${VAR:default} 占位符后合并进 viper
func loadConfigFile(v *viper.Viper, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := v.MergeConfig(strings.NewReader(expandEnv(string(content)))); err != nil {
		return fmt.Errorf("failed to merge config %s: %w", path, err)
	}
	return nil
}

// expandEnv 替换 ${VAR} 与 ${VAR:default}，未定义且无默认值时保留原文
func expandEnv(s string) string {
	return placeholder.ReplaceAllStringFunc(s, func(match string) string {
		sub := placeholder.FindStringSubmatch(match)
		if val, ok := os.LookupEnv(sub[1]); ok {
			return val
		}
		if sub[2] != "" {
			return sub[3]
		}
		return match
	})
}

// normalize 修正无效取值
func normalize(cfg *Config) {
	cfg.Vector.Backend = strings.ToLower(strings.TrimSpace(cfg.Vector.Backend))
	if cfg.Vector.Backend != VectorBackendMilvus {
		cfg.Vector.Backend = VectorBackendPgvector
	}
	if cfg.Vector.TopK <= 0 {
		cfg.Vector.TopK = 5
	}
	cfg.Query.Strategy = strings.ToLower(strings.TrimSpace(cfg.Query.Strategy))
	if cfg.Query.Strategy != QueryStrategyLLM {
		cfg.Query.Strategy = QueryStrategyRules
	}
	cfg.Embedding.Provider = strings.ToLower(strings.TrimSpace(cfg.Embedding.Provider))
	if cfg.Embedding.Provider != EmbeddingProviderOpenAI {
		cfg.Embedding.Provider = EmbeddingProviderHTTP
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "club-knowledge-api")
	v.SetDefault("app.version", "v0.0.0")
	v.SetDefault("app.env", "development")

	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8000)
	v.SetDefault("server.http.read_timeout", "30s")
	v.SetDefault("server.http.write_timeout", "120s")
	v.SetDefault("server.http.idle_timeout", "120s")
	v.SetDefault("server.http.shutdown_timeout", "30s")

	v.SetDefault("database.postgres.url", "")
	v.SetDefault("database.postgres.max_open_conns", 10)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", "30m")
	v.SetDefault("database.postgres.conn_max_idle_time", "5m")
	v.SetDefault("database.postgres.connect_timeout", "5s")

	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.pool_size", 20)
	v.SetDefault("cache.redis.min_idle_conns", 2)
	v.SetDefault("cache.redis.dial_timeout", "5s")
	v.SetDefault("cache.redis.read_timeout", "3s")
	v.SetDefault("cache.redis.write_timeout", "3s")

	v.SetDefault("vector.backend", VectorBackendPgvector)
	v.SetDefault("vector.top_k", 5)
	v.SetDefault("vector.milvus.enabled", false)
	v.SetDefault("vector.milvus.host", "localhost")
	v.SetDefault("vector.milvus.port", 19530)
	v.SetDefault("vector.milvus.collection_prefix", "club")
	v.SetDefault("vector.milvus.hnsw_m", 16)
	v.SetDefault("vector.milvus.hnsw_ef_construction", 200)
	v.SetDefault("vector.milvus.search_ef", 64)

	v.SetDefault("llm.default_provider", "gemini")
	v.SetDefault("llm.providers.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("llm.providers.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.providers.gemini.max_tokens", 1024)
	v.SetDefault("llm.providers.gemini.temperature", 0.2)
	v.SetDefault("llm.providers.gemini.timeout", "60s")

	v.SetDefault("embedding.provider", EmbeddingProviderHTTP)
	v.SetDefault("embedding.model", "BAAI/bge-base-en-v1.5")
	v.SetDefault("embedding.dimension", 768)
	v.SetDefault("embedding.batch_size", 32)
	v.SetDefault("embedding.endpoint", "http://localhost:8081")
	v.SetDefault("embedding.timeout", "30s")
	v.SetDefault("embedding.cache_ttl", "24h")

	v.SetDefault("query.strategy", QueryStrategyRules)
	v.SetDefault("query.compose_answers", false)
	v.SetDefault("query.context_max_chars", 6000)
	v.SetDefault("query.timeout", "60s")
	v.SetDefault("query.statement_timeout", "5s")

	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")
	v.SetDefault("observability.tracing.sample_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("security.jwt.secret", "")
	v.SetDefault("security.jwt.issuer", "club-knowledge-api")
	v.SetDefault("security.jwt.expiration", "12h")
	v.SetDefault("security.auth.enabled", false)
	v.SetDefault("security.rate_limit.enabled", false)
	v.SetDefault("security.rate_limit.requests", 60)
	v.SetDefault("security.rate_limit.window", "1m")
	v.SetDefault("security.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})
}
