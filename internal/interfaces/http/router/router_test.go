package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-knowledge-api/internal/application/ingestion"
	"club-knowledge-api/internal/config"
	"club-knowledge-api/internal/domain/entity"
	"club-knowledge-api/internal/interfaces/http/handler"
	"club-knowledge-api/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticAnswerer string

func (a staticAnswerer) Answer(context.Context, string) (string, error) { return string(a), nil }

type okIngestor struct{ calls int }

func (o *okIngestor) Add(context.Context, ingestion.Input) ingestion.Result {
	o.calls++
	return ingestion.Result{OK: true, Message: ingestion.MessageSaved}
}

type oneUser struct{ user *entity.User }

func (o oneUser) Create(context.Context, *entity.User) error { return nil }

func (o oneUser) GetByUsername(_ context.Context, name string) (*entity.User, error) {
	if o.user != nil && o.user.Username == name {
		return o.user, nil
	}
	return nil, nil
}

func testConfig(authEnabled bool) *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "club-knowledge-api"
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.Metrics.Path = "/metrics"
	cfg.Security.Auth.Enabled = authEnabled
	cfg.Security.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	return cfg
}

func newTestRouter(t *testing.T, authEnabled bool) (*gin.Engine, *okIngestor, *utils.JWTManager) {
	t.Helper()
	admin, err := entity.NewUser("admin", "pw")
	require.NoError(t, err)

	jwtm := utils.NewJWTManager("secret", "club-knowledge-api")
	ing := &okIngestor{}
	handlers := &RouterHandlers{
		Health: handler.NewHealthHandler(nil, nil, nil, nil, nil),
		Chat:   handler.NewChatHandler(staticAnswerer("EVENTS:\n1. Name: AI Summit\n   Date: 2024-03-01")),
		Event:  handler.NewEventHandler(ing),
		Auth:   handler.NewAuthHandler(jwtm, oneUser{user: admin}, time.Hour),
	}
	r := NewWithDeps(testConfig(authEnabled), handlers, nil, jwtm)
	return r.Engine(), ing, jwtm
}

func post(engine *gin.Engine, path, body string, header map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	engine.ServeHTTP(w, req)
	return w
}

func TestSystemRoutes(t *testing.T) {
	engine, _, _ := newTestRouter(t, false)

	for _, path := range []string{"/", "/health", "/live", "/ready", "/metrics"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, w.Body.String(), handler.RootStatus)
}

func TestChatRoute(t *testing.T) {
	engine, _, _ := newTestRouter(t, false)

	w := post(engine, "/api/chat", `{"query":"list all events"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "AI Summit")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAddEventOpenWhenAuthDisabled(t *testing.T) {
	engine, ing, _ := newTestRouter(t, false)

	w := post(engine, "/api/add-event", `{"name_of_event":"Cloud Day"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, ing.calls)
}

func TestAddEventRequiresLoginWhenAuthEnabled(t *testing.T) {
	engine, ing, _ := newTestRouter(t, true)

	w := post(engine, "/api/add-event", `{"name_of_event":"Cloud Day"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, ing.calls)

	w = post(engine, "/auth/login", `{"username":"admin","password":"pw"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var token struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))

	w = post(engine, "/api/add-event", `{"name_of_event":"Cloud Day"}`, map[string]string{
		"Authorization": "Bearer " + token.AccessToken,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, ing.calls)
}

func TestChatIsNotBehindAuth(t *testing.T) {
	engine, _, _ := newTestRouter(t, true)
	assert.Equal(t, http.StatusOK, post(engine, "/api/chat", `{"query":"hi"}`, nil).Code)
}
