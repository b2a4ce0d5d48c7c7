package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-knowledge-api/internal/domain/entity"
	"club-knowledge-api/internal/workflow/prompt"
)

type stubAnswerer struct {
	calls int
}

func (s *stubAnswerer) Answer(context.Context, string) (string, error) {
	s.calls++
	return "from rules", nil
}

func TestParseIntent(t *testing.T) {
	in, err := ParseIntent("```json\n{\"intent\": \"Semantic\", \"query\": \" RAG \"}\n```")
	require.NoError(t, err)
	assert.Equal(t, Intent{Intent: IntentSemantic, Query: "RAG"}, in)

	_, err = ParseIntent("no json here")
	assert.Error(t, err)

	_, err = ParseIntent(`{"intent": `)
	assert.Error(t, err)
}

func TestIsReadOnlySelect(t *testing.T) {
	ok := []string{
		"SELECT COUNT(*) FROM events",
		"select name_of_event from events where event_domain ILIKE '%AI%ML%';",
		"SELECT name_of_event FROM events WHERE description_insights ILIKE '%update%'",
		"SELECT name_of_event, date_of_event FROM events WHERE EXTRACT(YEAR FROM date_of_event) = 2024",
		"SELECT a.name_of_event FROM events a JOIN events b ON a.event_domain = b.event_domain",
		"SELECT name_of_event FROM public.events ORDER BY date_of_event, name_of_event",
		"SELECT COUNT(*) FROM (SELECT DISTINCT event_domain FROM events) d",
	}
	for _, s := range ok {
		assert.True(t, IsReadOnlySelect(s), s)
	}

	bad := []string{
		"",
		"DELETE FROM events",
		"SELECT 1; DROP TABLE events",
		"SELECT * INTO backup FROM events",
		"WITH x AS (DELETE FROM events RETURNING *) SELECT * FROM x",
		"SELECT 1 -- comment",
		"UPDATE events SET venue = 'x'",
		"SELECT 1",
	}
	for _, s := range bad {
		assert.False(t, IsReadOnlySelect(s), s)
	}
}

// 模型生成的语句只能读 events 表，不能调用系统函数
func TestIsReadOnlySelect_RestrictsRelationsAndFunctions(t *testing.T) {
	bad := []string{
		"SELECT username, password_hash FROM users",
		"SELECT pg_sleep(3600)",
		"SELECT pg_terminate_backend(pid) FROM pg_stat_activity",
		"SELECT pg_read_file('/etc/passwd')",
		"SELECT name_of_event FROM events, users",
		"SELECT name_of_event FROM events e , users u WHERE e.serial_no = u.id",
		"SELECT e.name_of_event FROM events e JOIN users u ON true",
		"SELECT name_of_event FROM events WHERE serial_no IN (SELECT id FROM users)",
		"SELECT name_of_event FROM events UNION SELECT password_hash FROM users",
		`SELECT * FROM "users"`,
		"SELECT table_name FROM information_schema.tables",
		"SELECT current_setting('data_directory') FROM events",
		"SELECT * FROM generate_series(1, 10)",
		"SELECT name_of_event FROM events WHERE pg_sleep(10) IS NULL",
	}
	for _, s := range bad {
		assert.False(t, IsReadOnlySelect(s), s)
	}
}

func TestLLMAnswerer_FallsBackWithoutGenerator(t *testing.T) {
	fb := &stubAnswerer{}
	a := NewLLMAnswerer(newRetriever(&memStore{}, &fakeIndex{}), &fakeGenerator{available: false}, prompt.NewRegistry(), fb, Options{})

	out, err := a.Answer(context.Background(), "how many events?")
	require.NoError(t, err)
	assert.Equal(t, "from rules", out)
	assert.Equal(t, 1, fb.calls)
}

func TestLLMAnswerer_Structured(t *testing.T) {
	store := &memStore{events: []entity.Event{event("Kickoff", "General", "Offline", "2023-01-01")}}
	gen := &fakeGenerator{available: true, replies: []string{
		`{"intent": "structured", "query": "` + listAllSQL + `"}`,
		"There was one event: Kickoff.",
	}}
	a := NewLLMAnswerer(newRetriever(store, &fakeIndex{}), gen, prompt.NewRegistry(), &stubAnswerer{}, Options{StatementTimeout: 2 * time.Second})

	out, err := a.Answer(context.Background(), "what events happened?")
	require.NoError(t, err)
	assert.Equal(t, "There was one event: Kickoff.", out)
	assert.Equal(t, []time.Duration{2 * time.Second}, store.readOnly)
	require.Len(t, gen.calls, 2)
	assert.Contains(t, gen.calls[1][1].Content, "Database returned: [(Kickoff, 2023-01-01)]")
	assert.Contains(t, gen.calls[1][1].Content, listAllSQL)
}

func TestLLMAnswerer_Semantic(t *testing.T) {
	gen := &fakeGenerator{available: true, replies: []string{
		`Here you go: {"intent": "semantic", "query": "ledgers"}`,
		"",
	}}
	a := NewLLMAnswerer(newRetriever(&memStore{}, &fakeIndex{matches: semanticMatches()}), gen, prompt.NewRegistry(), &stubAnswerer{}, Options{})

	out, err := a.Answer(context.Background(), "did anyone talk about ledgers?")
	require.NoError(t, err)
	assert.Contains(t, out, "Name: Chain Talk")
}

func TestLLMAnswerer_RejectsWrites(t *testing.T) {
	fb := &stubAnswerer{}
	store := &memStore{}
	gen := &fakeGenerator{available: true, replies: []string{`{"intent": "structured", "query": "DROP TABLE events"}`}}
	a := NewLLMAnswerer(newRetriever(store, &fakeIndex{}), gen, prompt.NewRegistry(), fb, Options{})

	out, err := a.Answer(context.Background(), "drop everything")
	require.NoError(t, err)
	assert.Equal(t, "from rules", out)
	assert.Empty(t, store.stmts)
}

func TestLLMAnswerer_RejectsOtherTables(t *testing.T) {
	fb := &stubAnswerer{}
	store := &memStore{}
	gen := &fakeGenerator{available: true, replies: []string{`{"intent": "structured", "query": "SELECT username, password_hash FROM users"}`}}
	a := NewLLMAnswerer(newRetriever(store, &fakeIndex{}), gen, prompt.NewRegistry(), fb, Options{})

	out, err := a.Answer(context.Background(), "who are the admins?")
	require.NoError(t, err)
	assert.Equal(t, "from rules", out)
	assert.Empty(t, store.stmts)
	assert.Empty(t, store.readOnly)
}

func TestLLMAnswerer_ParseErrorFallsBack(t *testing.T) {
	fb := &stubAnswerer{}
	gen := &fakeGenerator{available: true, err: errors.New("timeout")}
	a := NewLLMAnswerer(newRetriever(&memStore{}, &fakeIndex{}), gen, prompt.NewRegistry(), fb, Options{})

	out, err := a.Answer(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "from rules", out)
}
