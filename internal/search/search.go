package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"gruby/internal/embedding"
	"gruby/internal/models"
	"gruby/internal/repository"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
	snippetRunes = 280
)

var ErrEmptyQuery = errors.New("query text is required")

// ErrNotApproved is returned when indexing content that is not publicly visible.
var ErrNotApproved = errors.New("content is not approved")

type EmbeddingStore interface {
	Upsert(ctx context.Context, e *models.Embedding) error
	Latest(ctx context.Context, kind string, limit int) ([]models.Embedding, error)
	VectorSearch(ctx context.Context, index string, vector []float64, kind string, limit int) ([]repository.ScoredEmbedding, error)
	HasSource(ctx context.Context, sourceID string) (bool, error)
	DeleteSource(ctx context.Context, sourceID string) error
}

type ContentSource interface {
	FindByID(ctx context.Context, id string) (*models.ContentItem, error)
	ListApproved(ctx context.Context, page repository.Page) (*repository.PageResult[models.ContentItem], error)
}

type Query struct {
	Text  string `json:"query" binding:"required,max=2000"`
	Limit int    `json:"limit" binding:"omitempty,min=1"`
	Kind  string `json:"kind,omitempty"`
}

type Result struct {
	SourceID string  `json:"source_id"`
	Kind     string  `json:"kind"`
	Snippet  string  `json:"snippet"`
	Score    float64 `json:"score"`
}

// BackfillStats summarises one backfill run.
type BackfillStats struct {
	Scanned int `json:"scanned"`
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
}

type Options struct {
	// Index names an Atlas vector search index. Empty ranks locally.
	Index      string
	Candidates int
}

// Service answers admin similarity queries over stored content embeddings.
type Service struct {
	embedder   embedding.Embedder
	store      EmbeddingStore
	content    ContentSource
	index      string
	candidates int
	logger     *zap.Logger
}

func NewService(embedder embedding.Embedder, store EmbeddingStore, content ContentSource, opts Options, logger *zap.Logger) *Service {
	if opts.Candidates <= 0 {
		opts.Candidates = 500
	}
	return &Service{
		embedder:   embedder,
		store:      store,
		content:    content,
		index:      opts.Index,
		candidates: opts.Candidates,
		logger:     logger,
	}
}

func (s *Service) Search(ctx context.Context, q Query) ([]Result, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	if s.index != "" {
		hits, err := s.store.VectorSearch(ctx, s.index, toFloat64(vector), q.Kind, limit)
		if err != nil {
			return nil, err
		}
		results := make([]Result, len(hits))
		for i, h := range hits {
			results[i] = Result{SourceID: h.SourceID, Kind: h.Kind, Snippet: snippet(h.Text), Score: h.Score}
		}
		return results, nil
	}

	candidates, err := s.store.Latest(ctx, q.Kind, s.candidates)
	if err != nil {
		return nil, err
	}
	return s.rank(ctx, vector, candidates, limit)
}

// rank orders candidates by cosine similarity to the query vector.
func (s *Service) rank(ctx context.Context, query []float32, candidates []models.Embedding, limit int) ([]Result, error) {
	db := chromem.NewDB()
	col, err := db.CreateCollection("candidates", nil, noEmbed)
	if err != nil {
		return nil, err
	}

	docs := make([]chromem.Document, 0, len(candidates))
	for _, c := range candidates {
		// vectors from an older model can't be compared
		if len(c.Vector) != len(query) {
			continue
		}
		docs = append(docs, chromem.Document{
			ID:        c.SourceID,
			Content:   c.Text,
			Metadata:  map[string]string{"kind": c.Kind},
			Embedding: toFloat32(c.Vector),
		})
	}
	if skipped := len(candidates) - len(docs); skipped > 0 {
		s.logger.Warn("skipped embeddings with mismatched dimensions", zap.Int("count", skipped))
	}
	if len(docs) == 0 {
		return []Result{}, nil
	}
	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	if limit > len(docs) {
		limit = len(docs)
	}
	hits, err := col.QueryEmbedding(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("rank candidates: %w", err)
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{SourceID: h.ID, Kind: h.Metadata["kind"], Snippet: snippet(h.Content), Score: float64(h.Similarity)}
	}
	return results, nil
}

// IndexByID embeds an approved content item. If the item is moderated away
// while the embedding is in flight, the fresh vector is dropped again.
func (s *Service) IndexByID(ctx context.Context, id string) (*models.Embedding, error) {
	item, err := s.content.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e, err := s.Index(ctx, *item)
	if err != nil {
		return nil, err
	}

	current, err := s.content.FindByID(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if current == nil || current.Status != models.ModerationApproved {
		if err := s.store.DeleteSource(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrNotApproved
	}
	return e, nil
}

func (s *Service) Index(ctx context.Context, item models.ContentItem) (*models.Embedding, error) {
	if item.Status != models.ModerationApproved {
		return nil, ErrNotApproved
	}
	text := strings.TrimSpace(item.Text())
	if text == "" {
		return nil, ErrEmptyQuery
	}
	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	e := &models.Embedding{
		SourceID: item.ID.Hex(),
		Kind:     item.Kind,
		Text:     text,
		Model:    s.embedder.Model(),
		Vector:   toFloat64(vectors[0]),
	}
	if err := s.store.Upsert(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Remove forgets the vector of a content item that is no longer public.
func (s *Service) Remove(ctx context.Context, sourceID string) error {
	return s.store.DeleteSource(ctx, sourceID)
}

// Backfill embeds approved content that has no stored vector yet.
func (s *Service) Backfill(ctx context.Context, batchSize int) (BackfillStats, error) {
	var stats BackfillStats
	page := repository.Page{Page: 1, PageSize: batchSize}

	for {
		res, err := s.content.ListApproved(ctx, page)
		if err != nil {
			return stats, err
		}

		missing := make([]models.ContentItem, 0, len(res.Items))
		for _, item := range res.Items {
			stats.Scanned++
			has, err := s.store.HasSource(ctx, item.ID.Hex())
			if err != nil {
				return stats, err
			}
			if has || strings.TrimSpace(item.Text()) == "" {
				stats.Skipped++
				continue
			}
			missing = append(missing, item)
		}

		if len(missing) > 0 {
			n, err := s.indexBatch(ctx, missing)
			stats.Indexed += n
			if err != nil {
				return stats, err
			}
			s.logger.Info("backfilled embeddings", zap.Int("page", res.Page), zap.Int("indexed", n))
		}

		if int64(res.Page) >= res.TotalPages {
			return stats, nil
		}
		page.Page = res.Page + 1
		page.PageSize = res.PageSize
	}
}

func (s *Service) indexBatch(ctx context.Context, items []models.ContentItem) (int, error) {
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = strings.TrimSpace(item.Text())
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, err
	}

	for i, item := range items {
		err := s.store.Upsert(ctx, &models.Embedding{
			SourceID: item.ID.Hex(),
			Kind:     item.Kind,
			Text:     texts[i],
			Model:    s.embedder.Model(),
			Vector:   toFloat64(vectors[i]),
		})
		if err != nil {
			return i, err
		}
	}
	return len(items), nil
}

func noEmbed(context.Context, string) ([]float32, error) {
	return nil, errors.New("candidates must carry precomputed embeddings")
}

func snippet(text string) string {
	r := []rune(text)
	if len(r) <= snippetRunes {
		return text
	}
	return string(r[:snippetRunes]) + "…"
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
