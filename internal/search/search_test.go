package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"gruby/internal/embedding"
	"gruby/internal/models"
	"gruby/internal/repository"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vectors[t]
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return f.vectors[text], nil
}

func (f *fakeEmbedder) Model() string { return "fake-model" }

type fakeStore struct {
	embeddings   []models.Embedding
	upserted     []*models.Embedding
	sources      map[string]bool
	searchLimit  int
	searchIndex  string
	latestKind   string
	latestLimit  int
	vectorResult []repository.ScoredEmbedding
	deleted      []string
}

func (f *fakeStore) Upsert(_ context.Context, e *models.Embedding) error {
	f.upserted = append(f.upserted, e)
	return nil
}

func (f *fakeStore) Latest(_ context.Context, kind string, limit int) ([]models.Embedding, error) {
	f.latestKind, f.latestLimit = kind, limit
	return f.embeddings, nil
}

func (f *fakeStore) VectorSearch(_ context.Context, index string, _ []float64, _ string, limit int) ([]repository.ScoredEmbedding, error) {
	f.searchIndex, f.searchLimit = index, limit
	return f.vectorResult, nil
}

func (f *fakeStore) DeleteSource(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) HasSource(_ context.Context, id string) (bool, error) {
	return f.sources[id], nil
}

type fakeContent struct {
	items []models.ContentItem
}

func (f *fakeContent) FindByID(_ context.Context, id string) (*models.ContentItem, error) {
	for i := range f.items {
		if f.items[i].ID.Hex() == id {
			return &f.items[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeContent) ListApproved(_ context.Context, page repository.Page) (*repository.PageResult[models.ContentItem], error) {
	start := (page.Page - 1) * page.PageSize
	end := start + page.PageSize
	if end > len(f.items) {
		end = len(f.items)
	}
	total := int64(len(f.items))
	pages := (total + int64(page.PageSize) - 1) / int64(page.PageSize)
	return &repository.PageResult[models.ContentItem]{
		Items:      f.items[start:end],
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: pages,
	}, nil
}

func TestSearchRequiresText(t *testing.T) {
	svc := NewService(&fakeEmbedder{}, &fakeStore{}, &fakeContent{}, Options{}, zap.NewNop())

	_, err := svc.Search(context.Background(), Query{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchRanksLatestCandidates(t *testing.T) {
	store := &fakeStore{embeddings: []models.Embedding{
		{SourceID: "east", Kind: "recipe", Text: "borscht", Vector: []float64{1, 0}},
		{SourceID: "north", Kind: "recipe", Text: "salad", Vector: []float64{0, 1}},
		{SourceID: "near-east", Kind: "story", Text: "soup night", Vector: []float64{0.9, 0.1}},
		{SourceID: "old-model", Kind: "recipe", Text: "stale", Vector: []float64{1, 0, 0}},
	}}
	emb := &fakeEmbedder{vectors: map[string][]float32{"beet soup": {1, 0}}}
	svc := NewService(emb, store, &fakeContent{}, Options{Candidates: 100}, zap.NewNop())

	results, err := svc.Search(context.Background(), Query{Text: "beet soup", Limit: 2, Kind: "recipe"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "east", results[0].SourceID)
	assert.InDelta(t, 1.0, results[0].Score, 0.0001)
	assert.Equal(t, "near-east", results[1].SourceID)
	assert.Equal(t, "story", results[1].Kind)
	assert.Equal(t, "recipe", store.latestKind)
	assert.Equal(t, 100, store.latestLimit)
}

func TestSearchNoCandidates(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{"x": {1, 0}}}
	svc := NewService(emb, &fakeStore{}, &fakeContent{}, Options{}, zap.NewNop())

	results, err := svc.Search(context.Background(), Query{Text: "x"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchUsesVectorIndex(t *testing.T) {
	store := &fakeStore{vectorResult: []repository.ScoredEmbedding{
		{Embedding: models.Embedding{SourceID: "a", Kind: "recipe", Text: "pierogi"}, Score: 0.93},
	}}
	emb := &fakeEmbedder{vectors: map[string][]float32{"dumplings": {0.5, 0.5}}}
	svc := NewService(emb, store, &fakeContent{}, Options{Index: "embeddings_vector"}, zap.NewNop())

	results, err := svc.Search(context.Background(), Query{Text: "dumplings", Limit: 500})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, Result{SourceID: "a", Kind: "recipe", Snippet: "pierogi", Score: 0.93}, results[0])
	assert.Equal(t, "embeddings_vector", store.searchIndex)
	assert.Equal(t, MaxLimit, store.searchLimit)

	_, err = svc.Search(context.Background(), Query{Text: "dumplings"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, store.searchLimit)
}

func TestSearchDisabledEmbedder(t *testing.T) {
	svc := NewService(embedding.Disabled{}, &fakeStore{}, &fakeContent{}, Options{}, zap.NewNop())

	_, err := svc.Search(context.Background(), Query{Text: "anything"})
	assert.ErrorIs(t, err, embedding.ErrDisabled)
}

func TestIndexByID(t *testing.T) {
	item := models.ContentItem{ID: primitive.NewObjectID(), Kind: "recipe", Title: "Bigos", Body: "hunter's stew", Status: models.ModerationApproved}
	emb := &fakeEmbedder{vectors: map[string][]float32{item.Text(): {0.25, 0.5}}}
	store := &fakeStore{}
	svc := NewService(emb, store, &fakeContent{items: []models.ContentItem{item}}, Options{}, zap.NewNop())

	e, err := svc.IndexByID(context.Background(), item.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, item.ID.Hex(), e.SourceID)
	assert.Equal(t, "fake-model", e.Model)
	assert.Equal(t, []float64{0.25, 0.5}, e.Vector)
	require.Len(t, store.upserted, 1)

	_, err = svc.IndexByID(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIndexRejectsUnapprovedContent(t *testing.T) {
	for _, status := range []models.ModerationStatus{models.ModerationPending, models.ModerationFlagged, models.ModerationRemoved} {
		t.Run(string(status), func(t *testing.T) {
			item := models.ContentItem{ID: primitive.NewObjectID(), Kind: "story", Body: "hateful spam", Status: status}
			emb := &fakeEmbedder{vectors: map[string][]float32{item.Text(): {1, 0}}}
			store := &fakeStore{}
			svc := NewService(emb, store, &fakeContent{items: []models.ContentItem{item}}, Options{}, zap.NewNop())

			_, err := svc.IndexByID(context.Background(), item.ID.Hex())
			assert.ErrorIs(t, err, ErrNotApproved)
			assert.Empty(t, store.upserted)
			assert.Zero(t, emb.calls)
		})
	}
}

// moderatedMidway reports the item as approved once, then as removed.
type moderatedMidway struct {
	fakeContent
	reads int
}

func (f *moderatedMidway) FindByID(ctx context.Context, id string) (*models.ContentItem, error) {
	item, err := f.fakeContent.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.reads++
	out := *item
	if f.reads > 1 {
		out.Status = models.ModerationRemoved
	}
	return &out, nil
}

func TestIndexByIDDropsVectorRemovedDuringEmbedding(t *testing.T) {
	item := models.ContentItem{ID: primitive.NewObjectID(), Kind: "story", Body: "supper club", Status: models.ModerationApproved}
	emb := &fakeEmbedder{vectors: map[string][]float32{item.Text(): {1, 1}}}
	store := &fakeStore{}
	content := &moderatedMidway{fakeContent: fakeContent{items: []models.ContentItem{item}}}
	svc := NewService(emb, store, content, Options{}, zap.NewNop())

	_, err := svc.IndexByID(context.Background(), item.ID.Hex())
	assert.ErrorIs(t, err, ErrNotApproved)
	assert.Equal(t, []string{item.ID.Hex()}, store.deleted)
}

func TestBackfillSkipsIndexedAndEmpty(t *testing.T) {
	indexed := models.ContentItem{ID: primitive.NewObjectID(), Kind: "recipe", Body: "already there"}
	empty := models.ContentItem{ID: primitive.NewObjectID(), Kind: "comment", Body: "  "}
	fresh := models.ContentItem{ID: primitive.NewObjectID(), Kind: "story", Body: "supper club"}

	emb := &fakeEmbedder{vectors: map[string][]float32{"supper club": {1, 1}}}
	store := &fakeStore{sources: map[string]bool{indexed.ID.Hex(): true}}
	content := &fakeContent{items: []models.ContentItem{indexed, empty, fresh}}
	svc := NewService(emb, store, content, Options{}, zap.NewNop())

	stats, err := svc.Backfill(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, BackfillStats{Scanned: 3, Indexed: 1, Skipped: 2}, stats)
	require.Len(t, store.upserted, 1)
	assert.Equal(t, fresh.ID.Hex(), store.upserted[0].SourceID)
	assert.Equal(t, 1, emb.calls)
}

func TestSnippetTruncatesRunes(t *testing.T) {
	long := make([]rune, snippetRunes+5)
	for i := range long {
		long[i] = 'ż'
	}
	s := []rune(snippet(string(long)))
	assert.Len(t, s, snippetRunes+1)
	assert.Equal(t, "short", snippet("short"))
}

func TestRemove(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(&fakeEmbedder{}, store, &fakeContent{}, Options{}, zap.NewNop())

	require.NoError(t, svc.Remove(context.Background(), "c1"))
	assert.Equal(t, []string{"c1"}, store.deleted)
}
