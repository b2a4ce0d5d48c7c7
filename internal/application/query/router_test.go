package query

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-knowledge-api/internal/application/retrieval"
	"club-knowledge-api/internal/domain/entity"
	"club-knowledge-api/internal/domain/repository"
	"club-knowledge-api/internal/workflow/prompt"
	apperrors "club-knowledge-api/pkg/errors"
)

func newTestRouter(store *memStore, index *fakeIndex, gen *fakeGenerator, opts Options) *Router {
	var g Generator
	if gen != nil {
		g = gen
	}
	return NewRouter(newRetriever(store, index), g, prompt.NewRegistry(), opts)
}

func TestRoute(t *testing.T) {
	r := NewRouter(nil, nil, nil, Options{})
	tests := []struct {
		question string
		want     string
	}{
		{"list all events", RouteListAll},
		{"Give me the events", RouteListAll},
		{"show all events in detail", RouteListAll},
		{"Show me AI events", RouteDomain},
		{"list AI events", RouteListAll},
		{"list the cloud events", RouteListAll},
		{"show online events", RouteMode},
		{"list all offline events", RouteMode},
		{"hybrid events in 2024", RouteMode},
		{"events in 2024", RouteYear},
		{"AI events in 2023", RouteYear},
		{"any blockchain events?", RouteDomain},
		{"Cyber security event schedule", RouteDomain},
		{"Tell me about the robotics workshop", RouteSemantic},
		{"who was the speaker at hack night", RouteSemantic},
		{"online workshops", RouteSemantic},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Route(Analyze(tt.question)).Name)
		})
	}
}

func TestAnalyze(t *testing.T) {
	q := Analyze("Events held in 2019 or 2020 online")
	assert.True(t, q.HasEvent)
	assert.Equal(t, "2019", q.Year)
	assert.Equal(t, "online", q.Mode)

	q = Analyze("offline or online event")
	assert.Equal(t, "online", q.Mode)

	q = Analyze("web and ai events")
	require.NotNil(t, q.Domain)
	assert.Equal(t, "AI", q.Domain.Label)
}

// 领域关键词按子串匹配："maintain" 含 "ai"
func TestAnalyze_DomainSubstring(t *testing.T) {
	q := Analyze("which events maintain quality")
	require.NotNil(t, q.Domain)
	assert.Equal(t, "AI", q.Domain.Label)
	assert.False(t, q.DomainWord)

	r := NewRouter(nil, nil, nil, Options{})
	assert.Equal(t, RouteDomain, r.Route(q).Name)

	q = Analyze("show events in detail")
	assert.Equal(t, RouteListAll, r.Route(q).Name)

	q = Analyze("list AI events")
	assert.True(t, q.ExplicitList)
	assert.True(t, q.DomainWord)
	assert.Equal(t, RouteListAll, r.Route(q).Name)
}

func TestAnswer_ListAll(t *testing.T) {
	store := &memStore{events: []entity.Event{
		event("Cloud Summit", "Cloud", "Online", "2024-06-15"),
		event("Kickoff", "General", "Offline", "2023-01-01"),
	}}
	r := newTestRouter(store, &fakeIndex{}, nil, Options{})

	out, err := r.Answer(context.Background(), "list all events")
	require.NoError(t, err)
	assert.Equal(t, "EVENTS:\n1. Name: Kickoff\n   Date: 2023-01-01\n\n2. Name: Cloud Summit\n   Date: 2024-06-15", out)
	assert.Equal(t, []string{listAllSQL}, store.stmts)
}

func TestAnswer_Domain(t *testing.T) {
	store := &memStore{events: []entity.Event{
		event("Neural Nets 101", "AI / ML", "Offline", "2024-02-10"),
		event("Web Day", "Web", "Online", "2024-03-10"),
	}}
	r := newTestRouter(store, &fakeIndex{}, nil, Options{})

	out, err := r.Answer(context.Background(), "Show me AI events")
	require.NoError(t, err)
	assert.Equal(t, "AI EVENTS:\n1. Name: Neural Nets 101\n   Domain: AI / ML\n   Date: 2024-02-10", out)
	assert.Equal(t, []any{"%AI%"}, store.args[0])
}

func TestAnswer_Mode(t *testing.T) {
	store := &memStore{events: []entity.Event{
		event("Remote Talk", "AI", "ONLINE", "2024-05-01"),
		event("Lab Day", "IoT", "Offline", "2024-04-01"),
	}}
	r := newTestRouter(store, &fakeIndex{}, nil, Options{})

	out, err := r.Answer(context.Background(), "Which online AI events are there?")
	require.NoError(t, err)
	assert.Equal(t, "ONLINE EVENTS:\n1. Name: Remote Talk\n   Date: 2024-05-01", out)
	assert.Equal(t, []any{"online"}, store.args[0])
}

func TestAnswer_Year(t *testing.T) {
	store := &memStore{events: []entity.Event{
		event("Old", "AI", "Offline", "2023-05-01"),
		event("New", "AI", "Offline", "2024-05-01"),
	}}
	r := newTestRouter(store, &fakeIndex{}, nil, Options{})

	out, err := r.Answer(context.Background(), "AI events in 2023 and 2024")
	require.NoError(t, err)
	assert.Equal(t, "EVENTS IN 2023:\n1. Name: Old\n   Date: 2023-05-01", out)
	assert.Equal(t, []any{2023}, store.args[0])

	out, err = r.Answer(context.Background(), "events in 1999")
	require.NoError(t, err)
	assert.Equal(t, "No events in 1999 found.", out)
}

func TestAnswer_ConnectionFailure(t *testing.T) {
	store := &memStore{err: fmt.Errorf("dial tcp: %w", repository.ErrUnavailable)}
	r := newTestRouter(store, &fakeIndex{}, nil, Options{})

	for question, want := range map[string]string{
		"list all events":        "No events found.",
		"offline events":         "No offline events found.",
		"events in 2022":         "No events in 2022 found.",
		"robotics events please": "No ROBOTICS events found.",
	} {
		out, err := r.Answer(context.Background(), question)
		require.NoError(t, err)
		assert.Equal(t, want, out, question)
	}
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	r := newTestRouter(&memStore{}, &fakeIndex{}, nil, Options{})
	_, err := r.Answer(context.Background(), "   ")
	assert.ErrorIs(t, err, apperrors.ErrEmptyQuestion)
}

func semanticMatches() []*entity.EventMatch {
	return []*entity.EventMatch{{
		Name: "Chain Talk", Domain: "Blockchain", Date: "2024-03-01",
		Time: "10:00 AM", Venue: "Hall A", Description: "Ledgers explained", Similarity: 0.91,
	}}
}

func TestAnswer_SemanticWithoutGenerator(t *testing.T) {
	r := newTestRouter(&memStore{}, &fakeIndex{matches: semanticMatches()}, nil, Options{})
	out, err := r.Answer(context.Background(), "Tell me about the ledger workshop")
	require.NoError(t, err)
	assert.Equal(t, NoInformation, out)

	r = newTestRouter(&memStore{}, &fakeIndex{matches: semanticMatches()}, &fakeGenerator{available: false}, Options{})
	out, _ = r.Answer(context.Background(), "Tell me about the ledger workshop")
	assert.Equal(t, NoInformation, out)
}

func TestAnswer_SemanticPassages(t *testing.T) {
	gen := &fakeGenerator{available: true}
	r := newTestRouter(&memStore{}, &fakeIndex{matches: semanticMatches()}, gen, Options{})

	out, err := r.Answer(context.Background(), "Tell me about the ledger workshop")
	require.NoError(t, err)
	assert.Equal(t, "Name: Chain Talk\nDomain: Blockchain\nDate: 2024-03-01\nTime: 10:00 AM\nVenue: Hall A\nDetails: Ledgers explained", out)
	assert.Empty(t, gen.calls)
}

func TestAnswer_SemanticRetrievalFailure(t *testing.T) {
	gen := &fakeGenerator{available: true}
	for _, idx := range []*fakeIndex{{}, {err: repository.ErrUnavailable}, {err: errors.New("boom")}} {
		r := newTestRouter(&memStore{}, idx, gen, Options{ComposeAnswers: true})
		out, err := r.Answer(context.Background(), "who spoke about ledgers")
		require.NoError(t, err)
		assert.Equal(t, NoInformation, out)
	}
	assert.Empty(t, gen.calls)
}

func TestAnswer_SemanticComposed(t *testing.T) {
	gen := &fakeGenerator{available: true, replies: []string{"Chain Talk covered ledgers."}}
	r := newTestRouter(&memStore{}, &fakeIndex{matches: semanticMatches()}, gen, Options{ComposeAnswers: true})

	out, err := r.Answer(context.Background(), "who spoke about ledgers")
	require.NoError(t, err)
	assert.Equal(t, "Chain Talk covered ledgers.", out)
	require.Len(t, gen.calls, 1)
	assert.Contains(t, gen.calls[0][1].Content, "Details: Ledgers explained")
	assert.Contains(t, gen.calls[0][1].Content, "SQL Query Run (if any):\nN/A")
}

func TestAnswer_SemanticComposeFailureReturnsContext(t *testing.T) {
	gen := &fakeGenerator{available: true, err: errors.New("503")}
	r := newTestRouter(&memStore{}, &fakeIndex{matches: semanticMatches()}, gen, Options{ComposeAnswers: true})

	out, err := r.Answer(context.Background(), "who spoke about ledgers")
	require.NoError(t, err)
	assert.Contains(t, out, "Name: Chain Talk")
}

func TestFormatRows_FailuresAreUniform(t *testing.T) {
	failures := []retrieval.RowSet{
		{},
		{Failure: &retrieval.Failure{Kind: retrieval.FailureConnection}},
		{Failure: &retrieval.Failure{Kind: retrieval.FailureNoResults}},
		{Failure: &retrieval.Failure{Kind: retrieval.FailureNoMatches}},
		{Failure: &retrieval.Failure{Kind: retrieval.FailureQuery, Detail: "SQL error: x"}},
	}
	for _, rs := range failures {
		assert.Equal(t, "No AI events found.", FormatRows("AI events", rs, nameDomainDateFields))
	}
}

func TestFormatRows_Cells(t *testing.T) {
	rs := retrieval.RowSet{Rows: [][]any{{[]byte("Bytes"), nil}, {"Short"}}}
	out := FormatRows("events", rs, nameDateFields)
	assert.Equal(t, "EVENTS:\n1. Name: Bytes\n   Date: N/A\n\n2. Name: Short\n   Date: N/A", out)
}

func TestRenderRows(t *testing.T) {
	assert.Equal(t, "[(8)]", RenderRows(retrieval.RowSet{Rows: [][]any{{int64(8)}}}))
	assert.Equal(t, "No results", RenderRows(retrieval.RowSet{Failure: &retrieval.Failure{Kind: retrieval.FailureNoResults}}))
}
