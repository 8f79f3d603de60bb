package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbeddingsAPI struct {
	calls  atomic.Int32
	failed bool
}

func (f *fakeEmbeddingsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	if f.failed {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
		return
	}

	var req struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// reversed order checks that results are re-sorted by index
	data := make([]map[string]interface{}, 0, len(req.Input))
	for i := len(req.Input) - 1; i >= 0; i-- {
		data = append(data, map[string]interface{}{
			"object":    "embedding",
			"index":     i,
			"embedding": []float32{float32(len(req.Input[i])), 1},
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"object": "list",
		"data":   data,
		"model":  req.Model,
	})
}

func newTestEmbedder(t *testing.T, api *fakeEmbeddingsAPI) *OpenAI {
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return NewOpenAI(Config{APIKey: "test", BaseURL: srv.URL + "/v1", FailureThreshold: 3})
}

func TestEmbedBatches(t *testing.T) {
	api := &fakeEmbeddingsAPI{}
	e := newTestEmbedder(t, api)

	texts := make([]string, 150)
	for i := range texts {
		texts[i] = string(make([]byte, i%7))
	}

	vectors, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 150)
	assert.Equal(t, int32(2), api.calls.Load())
	for i, v := range vectors {
		assert.Equal(t, float32(i%7), v[0])
	}
}

func TestEmbedEmpty(t *testing.T) {
	api := &fakeEmbeddingsAPI{}
	e := newTestEmbedder(t, api)

	vectors, err := e.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
	assert.Zero(t, api.calls.Load())
}

func TestEmbedQueryIsCached(t *testing.T) {
	api := &fakeEmbeddingsAPI{}
	e := newTestEmbedder(t, api)

	first, err := e.EmbedQuery(context.Background(), "dumplings")
	require.NoError(t, err)
	second, err := e.EmbedQuery(context.Background(), "dumplings")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []float32{9, 1}, first)
	assert.Equal(t, int32(1), api.calls.Load())
	assert.Equal(t, "text-embedding-3-small", e.Model())
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	api := &fakeEmbeddingsAPI{failed: true}
	e := newTestEmbedder(t, api)

	for i := 0; i < 3; i++ {
		_, err := e.Embed(context.Background(), []string{"x"})
		require.Error(t, err)
	}

	_, err := e.Embed(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), api.calls.Load())
}

func TestDisabled(t *testing.T) {
	var e Embedder = Disabled{}

	_, err := e.EmbedQuery(context.Background(), "soup")
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = e.Embed(context.Background(), []string{"soup"})
	assert.ErrorIs(t, err, ErrDisabled)
}
