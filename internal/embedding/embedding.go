package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

const maxBatchSize = 100

// ErrDisabled is returned when no embedding provider is configured.
var ErrDisabled = errors.New("embeddings are not configured")

// Embedder turns text into vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Model() string
}

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client

	// QueryCacheSize and QueryCacheTTL bound the cache of single query vectors.
	QueryCacheSize int
	QueryCacheTTL  time.Duration
	// FailureThreshold consecutive failures open the breaker for BreakerTimeout.
	FailureThreshold uint32
	BreakerTimeout   time.Duration
}

// OpenAI embeds text with an OpenAI compatible embeddings endpoint.
type OpenAI struct {
	client  *openai.Client
	model   string
	breaker *gobreaker.CircuitBreaker
	queries *expirable.LRU[string, []float32]
}

func NewOpenAI(cfg Config) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	if cfg.QueryCacheSize <= 0 {
		cfg.QueryCacheSize = 256
	}
	if cfg.QueryCacheTTL <= 0 {
		cfg.QueryCacheTTL = 15 * time.Minute
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "embeddings",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up says nothing about the provider
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &OpenAI{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		breaker: breaker,
		queries: expirable.NewLRU[string, []float32](cfg.QueryCacheSize, nil, cfg.QueryCacheTTL),
	}
}

func (e *OpenAI) Model() string {
	return e.model
}

func (e *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	all := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := e.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vectors...)
	}
	return all, nil
}

// EmbedQuery embeds one search query, reusing recent results.
func (e *OpenAI) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.queries.Get(text); ok {
		return v, nil
	}
	vectors, err := e.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	e.queries.Add(text, vectors[0])
	return vectors[0], nil
}

func (e *OpenAI) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	out, err := e.breaker.Execute(func() (interface{}, error) {
		return e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: batch,
			Model: openai.EmbeddingModel(e.model),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	resp := out.(openai.EmbeddingResponse)
	if len(resp.Data) != len(batch) {
		return nil, fmt.Errorf("embedding api returned %d vectors, expected %d", len(resp.Data), len(batch))
	}
	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// Disabled is used when no API key is configured.
type Disabled struct{}

func (Disabled) Embed(context.Context, []string) ([][]float32, error) { return nil, ErrDisabled }

func (Disabled) EmbedQuery(context.Context, string) ([]float32, error) { return nil, ErrDisabled }

func (Disabled) Model() string { return "" }
