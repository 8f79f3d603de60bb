package app

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"gruby/internal/cache"
	"gruby/internal/config"
	"gruby/internal/database"
	"gruby/internal/embedding"
	"gruby/internal/middleware"
	"gruby/internal/notify"
	"gruby/internal/push"
	"gruby/internal/repository"
	"gruby/internal/search"
	"gruby/internal/share"
)

// App is the wired set of repositories and services shared by the API server
// and the admin CLI.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *mongo.Database
	Repos   *repository.Set
	Cache   cache.Store
	Search  *search.Service
	Notify  *notify.Composer
	Share   *share.Service
	Auth    *middleware.AdminAuth
	Limiter *middleware.RateLimiter

	client *mongo.Client
}

// Open connects to MongoDB and, when REDIS_ADDR is set, to Redis.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}

	store, err := openCache(ctx, cfg, logger)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	a := New(cfg, client.Database(cfg.MongoDB), store, logger)
	a.client = client
	return a, nil
}

func openCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.Store, error) {
	if cfg.RedisAddr == "" {
		logger.Info("using in-memory cache", zap.Duration("ttl", cfg.CacheTTL))
		return cache.NewMemory(cfg.CacheTTL, time.Minute), nil
	}

	store, err := cache.NewRedis(ctx, cache.RedisConfig{
		Address:   cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		Database:  cfg.RedisDB,
		KeyPrefix: "gruby:",
		TTL:       cfg.CacheTTL,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("using redis cache", zap.String("addr", cfg.RedisAddr))
	return store, nil
}

// New wires the services over an existing database handle and cache.
func New(cfg *config.Config, db *mongo.Database, store cache.Store, logger *zap.Logger) *App {
	repos := repository.NewSet(db)

	var embedder embedding.Embedder = embedding.Disabled{}
	if cfg.EmbeddingsEnabled() {
		embedder = embedding.NewOpenAI(embedding.Config{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.EmbeddingModel,
		})
	} else {
		logger.Warn("OPENAI_API_KEY not set, vector search disabled")
	}

	sender := push.NewClient(push.Config{
		URL:         cfg.ExpoPushURL,
		AccessToken: cfg.ExpoAccessToken,
	})

	return &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Repos:  repos,
		Cache:  store,
		Search: search.NewService(embedder, repos.Embeddings, repos.Content, search.Options{
			Index:      cfg.VectorIndex,
			Candidates: cfg.VectorCandidates,
		}, logger.Named("search")),
		Notify: notify.NewComposer(repos.Notifications, repos.Users, sender, logger.Named("notify")),
		Share: share.NewService(share.Links{
			Scheme:         cfg.DeepLinkScheme,
			AppStoreURL:    cfg.AppStoreURL,
			PlayStoreURL:   cfg.PlayStoreURL,
			WebFallbackURL: cfg.WebFallbackURL,
		}, repos.ShoppingLists, repos.Gatherings, repos.Content),
		Auth:    middleware.NewAdminAuth(cfg.AdminJWTSecret, cfg.AdminJWTIssuer),
		Limiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute),
	}
}

// Close releases the cache and the Mongo connection.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if c, ok := a.Cache.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	if a.client != nil {
		errs = append(errs, a.client.Disconnect(ctx))
	}
	return errors.Join(errs...)
}
