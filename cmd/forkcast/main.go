package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/config"
	"github.com/forkcast/forkcast/internal/db"
	dbRedis "github.com/forkcast/forkcast/internal/db/redis"
	"github.com/forkcast/forkcast/internal/domain"
	logpkg "github.com/forkcast/forkcast/internal/logger"
	"github.com/forkcast/forkcast/internal/metrics"
	corpusrepo "github.com/forkcast/forkcast/internal/repository/corpus"
	"github.com/forkcast/forkcast/internal/repository/embcache"
	"github.com/forkcast/forkcast/internal/repository/embfile"
	favoritesrepo "github.com/forkcast/forkcast/internal/repository/favorites"
	chiTransport "github.com/forkcast/forkcast/internal/transport/chi"
	openaiEmb "github.com/forkcast/forkcast/internal/transport/openai"
	"github.com/forkcast/forkcast/internal/usecase/hybrid"
	"github.com/forkcast/forkcast/internal/usecase/lexical"
	"github.com/forkcast/forkcast/internal/usecase/semantic"
	"github.com/forkcast/forkcast/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting forkcast API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_model", cfg.Embedding.Model),
	)

	metrics.Register()

	ctx := context.Background()

	// Load the corpus
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

	// Build embedder chain — composition root
	embedder := buildEmbedder(ctx, cfg, logger)

	// Build scorers over the shared corpus
	lexSvc := lexical.New(corpus, logger)
	semSvc := semantic.New(corpus, embedder, cfg.Embedding.Model, logger)
	hybSvc := hybrid.New(corpus, lexSvc, semSvc, fusionWeights(cfg), logger)

	fitAll(ctx, cfg, lexSvc, semSvc, logger)

	favStore := favoritesrepo.New(cfg.Data.FavoritesFile, logger)

	server := chiTransport.NewServer(
		lexSvc, semSvc, hybSvc, semSvc, favStore, loaded.Ingredients, logger,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
	logger.Info("Server stopped")
}

// buildEmbedder creates the provider and, when Redis is configured, wraps
// it in the per-text cache decorator.
func buildEmbedder(ctx context.Context, cfg config.Config, logger *zap.Logger) domain.Embedder {
	provider := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	if len(cfg.Redis.Addrs) == 0 {
		return provider
	}

	var store db.Store
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create redis store", zap.Error(err))
	}

	readiness := time.Duration(cfg.Redis.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Redis not ready", zap.Error(err))
	}
	logger.Info("Embedding cache store connected", zap.Strings("addrs", cfg.Redis.Addrs))

	ttl := time.Duration(cfg.Redis.CacheTTLHours) * time.Hour
	return embcache.New(provider, cfg.Embedding.Model, store, ttl, metrics.EmbeddingCacheTotal, logger)
}

// fitAll fits the lexical scorer, then installs the semantic matrix from
// the cache file when compatible or falls back to a full embedding pass
// (persisting the fresh matrix afterwards).
func fitAll(
	ctx context.Context,
	cfg config.Config,
	lexSvc *lexical.Service,
	semSvc *semantic.Service,
	logger *zap.Logger,
) {
	start := time.Now()
	if err := lexSvc.Fit(ctx); err != nil {
		logger.Fatal("Failed to fit lexical scorer", zap.Error(err))
	}
	metrics.FitDuration.WithLabelValues("lexical").Observe(time.Since(start).Seconds())

	cacheStore, err := embfile.New(cfg.Data.CacheDir, logger)
	if err != nil {
		logger.Fatal("Failed to open cache dir", zap.Error(err))
	}

	if payload, ok := cacheStore.Load(cfg.Data.CacheName); ok && semSvc.LoadFromCache(payload) {
		return
	}

	logger.Info("Embedding cache unusable, fitting semantic scorer from scratch")
	start = time.Now()
	if err := semSvc.Fit(ctx); err != nil {
		logger.Fatal("Failed to fit semantic scorer", zap.Error(err))
	}
	metrics.FitDuration.WithLabelValues("semantic").Observe(time.Since(start).Seconds())

	payload, err := semSvc.Cache()
	if err != nil {
		logger.Error("Cannot bundle embeddings for caching", zap.Error(err))
		return
	}
	if !cacheStore.Save(cfg.Data.CacheName, payload) {
		logger.Warn("Embedding cache not persisted; next start will re-embed")
	}
}

func fusionWeights(cfg config.Config) hybrid.Weights {
	if cfg.Hybrid.TFIDFWeight != nil && cfg.Hybrid.BERTWeight != nil {
		return hybrid.Weights{TFIDF: *cfg.Hybrid.TFIDFWeight, BERT: *cfg.Hybrid.BERTWeight}
	}
	return hybrid.PresetWeights(cfg.Hybrid.Preset)
}
