// Package embcache caches individual text embeddings in a key-value
// store, so repeated precompute runs and recurring ad-hoc queries do not
// re-bill identical texts against the provider.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/db"
	"github.com/forkcast/forkcast/internal/domain"
)

const cacheKeyPrefix = "forkcast:emb_cache:"

// store is the consumer interface for the embedding cache.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedEmbedder decorates an embedder with a key-value cache. Keys are
// derived from the model name and a hash of the text, so switching models
// never serves stale vectors. Entries expire after ttl; a zero ttl keeps
// them forever.
type CachedEmbedder struct {
	inner      domain.Embedder
	model      string
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. cacheTotal is a counter vec with label
// "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Embedder,
	model string,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	return &CachedEmbedder{
		inner:      inner,
		model:      model,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Embed returns a cached embedding or calls the inner embedder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if vec, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.incCache("miss")

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	c.putToCache(ctx, key, result.Embedding)
	return result, nil
}

// BatchEmbed serves cached texts from the store and embeds only the
// misses, in one inner batch call when the inner embedder supports it.
func (c *CachedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	embeddings := make([][]float32, len(texts))

	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if vec, ok := c.getFromCache(ctx, c.cacheKey(text)); ok {
			c.incCache("hit")
			embeddings[i] = vec
			continue
		}
		c.incCache("miss")
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return domain.BatchEmbeddingResult{Embeddings: embeddings}, nil
	}

	res, err := domain.BatchEmbed(ctx, c.inner, missTexts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed batch misses: %w", err)
	}
	if len(res.Embeddings) != len(missTexts) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf(
			"provider returned %d embeddings for %d texts: %w",
			len(res.Embeddings), len(missTexts), domain.ErrEmbeddingProviderError,
		)
	}

	for i, vec := range res.Embeddings {
		pos := missIdx[i]
		embeddings[pos] = vec
		c.putToCache(ctx, c.cacheKey(texts[pos]), vec)
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

func (c *CachedEmbedder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(c.model + "\x00" + text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) getFromCache(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) putToCache(ctx context.Context, key string, vec []float32) {
	var err error
	if c.ttl > 0 {
		err = c.store.SetWithTTL(ctx, key, vectorToBytes(vec), c.ttl)
	} else {
		err = c.store.Set(ctx, key, vectorToBytes(vec))
	}
	if err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid length %d", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
