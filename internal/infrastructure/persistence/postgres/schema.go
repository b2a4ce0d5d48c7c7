package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"club-knowledge-api/internal/domain/entity"
)

// schemaStatements 返回 events 表与索引的 DDL
func schemaStatements(dimension int) []string {
	table := pq.QuoteIdentifier(entity.Event{}.TableName())
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	event_id VARCHAR(150),
	serial_no INTEGER DEFAULT 0,
	name_of_event TEXT NOT NULL,
	event_domain TEXT,
	date_of_event DATE NOT NULL,
	time_of_event TEXT,
	faculty_coordinators TEXT,
	student_coordinators TEXT,
	venue TEXT,
	mode_of_event TEXT,
	registration_fee TEXT,
	speakers TEXT,
	perks TEXT,
	collaboration TEXT,
	description_insights TEXT,
	search_text TEXT,
	embedding vector(%d)
)`, table, dimension),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_events_date ON %s (date_of_event)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_events_embedding ON %s USING hnsw (embedding vector_cosine_ops)`, table),
	}
}

// EnsureSchema 创建 pgvector 扩展、events 表、索引与 users 表
func EnsureSchema(ctx context.Context, client *Client, dimension int) error {
	ctx, span := tracer.Start(ctx, "postgres.EnsureSchema")
	defer span.End()

	for _, stmt := range schemaStatements(dimension) {
		if _, err := client.sqlDB.ExecContext(ctx, stmt); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to apply schema: %w", classify(err))
		}
	}
	if err := client.db.WithContext(ctx).AutoMigrate(&entity.User{}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to migrate users: %w", classify(err))
	}
	return nil
}
