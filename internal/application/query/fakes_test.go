package query

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"club-knowledge-api/internal/application/retrieval"
	"club-knowledge-api/internal/domain/entity"
	"club-knowledge-api/internal/domain/repository"
)

// memStore 在内存中执行路由器发出的固定语句
type memStore struct {
	events []entity.Event
	err    error

	stmts    []string
	args     [][]any
	readOnly []time.Duration
}

func (s *memStore) QueryReadOnly(ctx context.Context, timeout time.Duration, stmt string, args ...any) (*repository.Rows, error) {
	s.readOnly = append(s.readOnly, timeout)
	return s.Query(ctx, stmt, args...)
}

func (s *memStore) Query(_ context.Context, stmt string, args ...any) (*repository.Rows, error) {
	s.stmts = append(s.stmts, stmt)
	s.args = append(s.args, args)
	if s.err != nil {
		return nil, s.err
	}

	sorted := append([]entity.Event(nil), s.events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	rows := &repository.Rows{Columns: []string{"name_of_event", "date_of_event"}}
	for _, ev := range sorted {
		switch stmt {
		case listAllSQL:
		case modeSQL:
			if strings.ToLower(ev.Mode) != args[0].(string) {
				continue
			}
		case yearSQL:
			if ev.Date.Year() != args[0].(int) {
				continue
			}
		case domainSQL:
			label := strings.Trim(args[0].(string), "%")
			if !strings.Contains(strings.ToLower(ev.Domain), strings.ToLower(label)) {
				continue
			}
			rows.Columns = []string{"name_of_event", "event_domain", "date_of_event"}
			rows.Values = append(rows.Values, []any{ev.Name, ev.Domain, ev.Date})
			continue
		default:
			return nil, errors.New("unexpected statement")
		}
		rows.Values = append(rows.Values, []any{ev.Name, ev.Date})
	}
	return rows, nil
}

func event(name, domain, mode, date string) entity.Event {
	d, err := time.Parse(entity.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return entity.Event{Name: name, Domain: domain, Mode: mode, Date: d}
}

type fakeIndex struct {
	matches []*entity.EventMatch
	err     error
}

func (x *fakeIndex) SearchEvents(context.Context, []float32, int) ([]*entity.EventMatch, error) {
	return x.matches, x.err
}

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type fakeGenerator struct {
	available bool
	replies   []string
	err       error
	calls     [][]*schema.Message
}

func (g *fakeGenerator) Available() bool { return g.available }

func (g *fakeGenerator) Generate(_ context.Context, msgs []*schema.Message) (string, error) {
	g.calls = append(g.calls, msgs)
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "", nil
	}
	r := g.replies[0]
	g.replies = g.replies[1:]
	return r, nil
}

func newRetriever(store retrieval.EventStore, index retrieval.VectorIndex) *retrieval.Retriever {
	return retrieval.NewRetriever(store, index, fixedEmbedder{}, "pgvector", 5)
}
