package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-knowledge-api/internal/config"
)

func TestClientEmbedStringsBatches(t *testing.T) {
	var batches [][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "bge", req.Model)
		batches = append(batches, req.Texts)

		resp := embedResponse{}
		for range req.Texts {
			resp.Embeddings = append(resp.Embeddings, []float32{0.5, 0.25})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c, err := NewClient(&config.EmbeddingConfig{Endpoint: srv.URL, Model: "bge", BatchSize: 2})
	require.NoError(t, err)

	out, err := c.EmbedStrings(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []float64{0.5, 0.25}, out[2])
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, batches)
}

func TestClientReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewClient(&config.EmbeddingConfig{Endpoint: srv.URL + "/v1/embed"})
	require.NoError(t, err)

	_, err = c.EmbedStrings(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=503")
}

func TestEmbedURL(t *testing.T) {
	u, err := embedURL("http://localhost:8081/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8081/embed", u)

	u, err = embedURL("http://tei:80/v1/embed")
	require.NoError(t, err)
	assert.Equal(t, "http://tei:80/v1/embed", u)

	_, err = embedURL("")
	assert.Error(t, err)
	_, err = embedURL("localhost")
	assert.Error(t, err)
}
