// Package postgres 提供 PostgreSQL + pgvector 数据访问实现
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"club-knowledge-api/internal/config"
	"club-knowledge-api/pkg/logger"
)

var tracer = otel.Tracer("postgres")

// Client PostgreSQL 客户端
// 连接池基于 lib/pq，gorm 复用同一个 *sql.DB
type Client struct {
	sqlDB  *sql.DB
	db     *gorm.DB
	config *config.PostgresConfig
}

// NewClient 创建客户端，不主动建立连接
func NewClient(cfg *config.PostgresConfig) (*Client, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("postgres url is empty")
	}

	sqlDB, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.New(gormWriter{}, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		DisableAutomaticPing: true,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to init gorm: %w", err)
	}

	return &Client{
		sqlDB:  sqlDB,
		db:     db,
		config: cfg,
	}, nil
}

// DB 获取 GORM 实例
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Close 关闭连接池
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.sqlDB.Close()
}

// Ping 在超时内检查连接
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "postgres.Ping")
	defer span.End()

	timeout := c.config.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.sqlDB.PingContext(ctx); err != nil {
		span.RecordError(err)
		return classify(err)
	}
	return nil
}

// HealthCheck 健康检查
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "postgres.HealthCheck")
	defer span.End()

	var result int
	if err := c.sqlDB.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		span.RecordError(err)
		return fmt.Errorf("health check failed: %w", classify(err))
	}
	return nil
}

// gormWriter 将 gorm 日志转到 slog
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	logger.Default().Warn(fmt.Sprintf(format, args...), "component", "gorm")
}
