package milvus

import (
	"context"
	"strconv"

	"club-knowledge-api/internal/application/retrieval"
	"club-knowledge-api/internal/domain/entity"
)

// EventIndex 将 Repository 适配为检索端口
type EventIndex struct {
	repo *Repository
}

func NewEventIndex(repo *Repository) *EventIndex {
	return &EventIndex{repo: repo}
}

var (
	_ retrieval.VectorIndex  = (*EventIndex)(nil)
	_ retrieval.VectorWriter = (*EventIndex)(nil)
)

// Available Milvus 客户端是否就绪
func (x *EventIndex) Available() bool {
	return x != nil && x.repo.ready() == nil
}

// SearchEvents 返回最相似的活动
func (x *EventIndex) SearchEvents(ctx context.Context, vector []float32, topK int) ([]*entity.EventMatch, error) {
	if x == nil || x.repo == nil {
		return nil, retrieval.ErrVectorDisabled
	}
	hits, err := x.repo.Search(ctx, vector, topK)
	if err != nil {
		return nil, err
	}

	matches := make([]*entity.EventMatch, 0, len(hits))
	for _, h := range hits {
		matches = append(matches, &entity.EventMatch{
			Name:        h.Record.Name,
			Domain:      h.Record.Domain,
			Date:        h.Record.Date,
			Time:        h.Record.Time,
			Venue:       h.Record.Venue,
			Description: h.Record.Description,
			Similarity:  float64(h.Score),
		})
	}
	return matches, nil
}

// IndexEvent 写入活动向量，ID 使用 events 表主键
func (x *EventIndex) IndexEvent(ctx context.Context, ev *entity.Event) error {
	if x == nil || x.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	return x.repo.Insert(ctx, &EventRecord{
		ID:          strconv.FormatInt(ev.ID, 10),
		Vector:      ev.Embedding.Slice(),
		Name:        ev.Name,
		Domain:      ev.Domain,
		Date:        ev.DateString(),
		Time:        ev.Time,
		Venue:       ev.Venue,
		Description: ev.Description,
	})
}

// RemoveEvent 按 events 表主键删除向量
func (x *EventIndex) RemoveEvent(ctx context.Context, ev *entity.Event) error {
	if x == nil || x.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	return x.repo.Delete(ctx, strconv.FormatInt(ev.ID, 10))
}
