package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Repository 活动向量仓储
type Repository struct {
	client *Client
	dim    int
}

// NewRepository 创建仓储
func NewRepository(client *Client, dim int) *Repository {
	return &Repository{client: client, dim: dim}
}

// SearchResult 检索命中
type SearchResult struct {
	Score  float32
	Record EventRecord
}

func (r *Repository) ready() error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	return nil
}

// EnsureEventsCollection 集合不存在时创建集合与 HNSW 索引并加载
func (r *Repository) EnsureEventsCollection(ctx context.Context) error {
	if err := r.ready(); err != nil {
		return err
	}
	ctx, span := tracer.Start(ctx, "milvus.EnsureEventsCollection")
	defer span.End()

	exists, err := r.client.HasCollection(ctx, CollectionEvents)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		schema := EventsSchema(r.dim)
		schema.CollectionName = r.client.CollectionName(CollectionEvents)
		if err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create collection: %w", err)
		}
		if err := r.createIndex(ctx); err != nil {
			return err
		}
	}
	return r.client.LoadCollection(ctx, CollectionEvents)
}

func (r *Repository) createIndex(ctx context.Context) error {
	idx, err := entity.NewIndexHNSW(entity.COSINE, r.client.config.HNSWM, r.client.config.HNSWEfConstruction)
	if err != nil {
		return fmt.Errorf("failed to build index params: %w", err)
	}
	if err := r.client.milvus.CreateIndex(ctx, r.client.CollectionName(CollectionEvents), fieldVector, idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// Search 余弦相似度检索，分数越大越相似
func (r *Repository) Search(ctx context.Context, vector []float32, topK int) ([]*SearchResult, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "milvus.Search",
		trace.WithAttributes(attribute.Int("top_k", topK)))
	defer span.End()

	ef := r.client.config.SearchEf
	if ef < topK {
		ef = topK
	}
	sp, err := entity.NewIndexHNSWSearchParam(ef)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		r.client.CollectionName(CollectionEvents),
		nil,
		"",
		outputFields,
		[]entity.Vector{entity.FloatVector(vector)},
		fieldVector,
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var out []*SearchResult
	for _, result := range results {
		cols := make(map[string][]string, len(outputFields))
		for _, name := range outputFields {
			if col, ok := result.Fields.GetColumn(name).(*entity.ColumnVarChar); ok {
				cols[name] = col.Data()
			}
		}
		pick := func(name string, i int) string {
			if data := cols[name]; i < len(data) {
				return data[i]
			}
			return ""
		}
		for i := 0; i < result.ResultCount; i++ {
			out = append(out, &SearchResult{
				Score: result.Scores[i],
				Record: EventRecord{
					Name:        pick(fieldName, i),
					Domain:      pick(fieldDomain, i),
					Date:        pick(fieldDate, i),
					Time:        pick(fieldTime, i),
					Venue:       pick(fieldVenue, i),
					Description: pick(fieldDescription, i),
				},
			})
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(out)))
	return out, nil
}

// Insert 写入一条活动向量
func (r *Repository) Insert(ctx context.Context, rec *EventRecord) error {
	if err := r.ready(); err != nil {
		return err
	}
	ctx, span := tracer.Start(ctx, "milvus.Insert",
		trace.WithAttributes(attribute.String("id", rec.ID)))
	defer span.End()

	if len(rec.Vector) != r.dim {
		return fmt.Errorf("vector dimension %d does not match collection dimension %d", len(rec.Vector), r.dim)
	}

	_, err := r.client.milvus.Insert(ctx, r.client.CollectionName(CollectionEvents), "",
		entity.NewColumnVarChar(fieldID, []string{clip(rec.ID, maxIDLen)}),
		entity.NewColumnFloatVector(fieldVector, r.dim, [][]float32{rec.Vector}),
		entity.NewColumnVarChar(fieldName, []string{clip(rec.Name, maxNameLen)}),
		entity.NewColumnVarChar(fieldDomain, []string{clip(rec.Domain, maxShortLen)}),
		entity.NewColumnVarChar(fieldDate, []string{rec.Date}),
		entity.NewColumnVarChar(fieldTime, []string{clip(rec.Time, 64)}),
		entity.NewColumnVarChar(fieldVenue, []string{clip(rec.Venue, maxShortLen)}),
		entity.NewColumnVarChar(fieldDescription, []string{clip(rec.Description, maxDescriptionLen)}),
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert event vector: %w", err)
	}
	return nil
}

// Delete 按主键删除一条活动向量
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ready(); err != nil {
		return err
	}
	ctx, span := tracer.Start(ctx, "milvus.Delete",
		trace.WithAttributes(attribute.String("id", id)))
	defer span.End()

	if err := r.client.milvus.Delete(ctx, r.client.CollectionName(CollectionEvents), "", deleteExpr(id)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete event vector: %w", err)
	}
	return nil
}

func deleteExpr(id string) string {
	return fmt.Sprintf(`%s in ["%s"]`, fieldID, clip(id, maxIDLen))
}
