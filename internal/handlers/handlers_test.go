package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"gruby/internal/cache"
	"gruby/internal/embedding"
	"gruby/internal/models"
	"gruby/internal/repository"
	"gruby/internal/search"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

func pageOf[T any](items ...T) *repository.PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return &repository.PageResult[T]{
		Items:      items,
		Total:      int64(len(items)),
		Page:       1,
		PageSize:   repository.DefaultPageSize,
		TotalPages: 1,
	}
}

func newMemoryCache(t *testing.T) *cache.Memory {
	t.Helper()
	m := cache.NewMemory(time.Minute, 0)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// fakeProducts is an in-memory product store keyed by hex id.
type fakeProducts struct {
	items     map[string]models.Product
	findCalls int
	updates   []bson.M
	err       error
}

func newFakeProducts(items ...models.Product) *fakeProducts {
	f := &fakeProducts{items: map[string]models.Product{}}
	for _, p := range items {
		f.items[p.ID.Hex()] = p
	}
	return f
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	if f.err != nil {
		return f.err
	}
	p.ID = primitive.NewObjectID()
	f.items[p.ID.Hex()] = *p
	return nil
}

func (f *fakeProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	f.findCalls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProducts) FindMany(_ context.Context, ids []string) ([]models.Product, error) {
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := f.items[id]; ok {
			out = append(out, p)
		}
	}
	return out, f.err
}

func (f *fakeProducts) FindAll(_ context.Context, _ repository.ProductFilter, _ repository.Page) (*repository.PageResult[models.Product], error) {
	out := []models.Product{}
	for _, p := range f.items {
		out = append(out, p)
	}
	return pageOf(out...), f.err
}

func (f *fakeProducts) Update(_ context.Context, id string, update bson.M) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeProducts) SoftDelete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeCooks map[string]models.User

func (f fakeCooks) FindHomeCook(_ context.Context, id string) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", fmt.Errorf("lookup: %w", repository.ErrNotFound), http.StatusNotFound, "widget not found"},
		{"invalid id", repository.ErrInvalidID, http.StatusBadRequest, "invalid id"},
		{"transition", models.ErrInvalidTransition, http.StatusConflict, models.ErrInvalidTransition.Error()},
		{"duplicate", repository.ErrDuplicate, http.StatusConflict, "widget already exists"},
		{"empty query", search.ErrEmptyQuery, http.StatusBadRequest, search.ErrEmptyQuery.Error()},
		{"embeddings off", embedding.ErrDisabled, http.StatusServiceUnavailable, "embedding service unavailable"},
		{"breaker open", gobreaker.ErrOpenState, http.StatusServiceUnavailable, "embedding service unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tt.err, "widget")

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, errorBody(t, w))
			if tt.status >= http.StatusInternalServerError {
				assert.Len(t, c.Errors, 1)
			} else {
				assert.Empty(t, c.Errors)
			}
		})
	}
}

func TestPageParams(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3&page_size=50", nil)
	assert.Equal(t, repository.Page{Page: 3, PageSize: 50}, pageParams(c))

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, repository.Page{Page: 1, PageSize: repository.DefaultPageSize}, pageParams(c))
}

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/healthz", Health)

	w := doJSON(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
