// Command precompute builds the semantic embedding cache offline, so the
// API server can start without paying the corpus embedding cost.
package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/config"
	dbRedis "github.com/forkcast/forkcast/internal/db/redis"
	"github.com/forkcast/forkcast/internal/domain"
	logpkg "github.com/forkcast/forkcast/internal/logger"
	"github.com/forkcast/forkcast/internal/metrics"
	corpusrepo "github.com/forkcast/forkcast/internal/repository/corpus"
	"github.com/forkcast/forkcast/internal/repository/embcache"
	"github.com/forkcast/forkcast/internal/repository/embfile"
	openaiEmb "github.com/forkcast/forkcast/internal/transport/openai"
	"github.com/forkcast/forkcast/internal/usecase/semantic"
)

func main() {
	force := flag.Bool("force", false, "rebuild the cache even if one exists")
	flag.Parse()

	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	metrics.Register()

	ctx := context.Background()

	cacheStore, err := embfile.New(cfg.Data.CacheDir, logger)
	if err != nil {
		logger.Fatal("Failed to open cache dir", zap.Error(err))
	}
	if !*force && cacheStore.Exists(cfg.Data.CacheName) {
		logger.Info("Cache already exists, nothing to do (use -force to rebuild)",
			zap.String("path", cacheStore.Path(cfg.Data.CacheName)),
		)
		return
	}

	loader := corpusrepo.New(cfg.Data.Dir, logger).
		WithFilter(cfg.Data.MinRating, cfg.Data.TopRecipes)
	loaded, err := loader.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load corpus", zap.Error(err))
	}

	corpus, err := domain.NewCorpus(loaded.Recipes)
	if err != nil {
		logger.Fatal("Failed to build corpus index", zap.Error(err))
	}

	var embedder domain.Embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	// With a store configured, re-runs only pay for texts that changed.
	if len(cfg.Redis.Addrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Redis.Addrs,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer store.Close()

		readiness := time.Duration(cfg.Redis.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}

		ttl := time.Duration(cfg.Redis.CacheTTLHours) * time.Hour
		embedder = embcache.New(embedder, cfg.Embedding.Model, store, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	semSvc := semantic.New(corpus, embedder, cfg.Embedding.Model, logger)

	start := time.Now()
	if err := semSvc.Fit(ctx); err != nil {
		logger.Fatal("Failed to embed corpus", zap.Error(err))
	}
	logger.Info("Corpus embedded", zap.Duration("took", time.Since(start)))

	payload, err := semSvc.Cache()
	if err != nil {
		logger.Fatal("Cannot bundle embeddings", zap.Error(err))
	}
	if !cacheStore.Save(cfg.Data.CacheName, payload) {
		logger.Fatal("Failed to persist cache")
	}
	logger.Info("Embedding cache written",
		zap.String("path", cacheStore.Path(cfg.Data.CacheName)),
		zap.Int("recipes", payload.NRecipes()),
		zap.String("model", payload.Model),
	)
}
