// Package semantic implements the dense embedding-based recipe scorer:
// one composite text per recipe mapped to a fixed-length vector by an
// injected embedding provider, queried by cosine similarity.
package semantic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/domain"
)

// Service is the semantic scorer. Embedding the corpus is the dominant
// cost in the whole system, hence LoadFromCache: a precomputed matrix can
// be installed instead of re-embedding. Queries are read-only and safe to
// run concurrently once Fit or LoadFromCache completes.
type Service struct {
	corpus *domain.Corpus
	embed  Embedder
	model  string
	matrix [][]float32
	logger *zap.Logger
}

// New creates a semantic scorer over a fitted corpus. model names the
// embedding model and keys cache compatibility checks.
func New(corpus *domain.Corpus, embed Embedder, model string, logger *zap.Logger) *Service {
	return &Service{corpus: corpus, embed: embed, model: model, logger: logger}
}

// Fit builds one composite text per recipe (name, description,
// ingredients, tags, space-joined in that order) and embeds the batch.
func (s *Service) Fit(ctx context.Context) error {
	texts := make([]string, s.corpus.Len())
	for i := 0; i < s.corpus.Len(); i++ {
		texts[i] = compositeText(s.corpus.At(i))
	}

	s.logger.Info("Embedding corpus",
		zap.String("model", s.model),
		zap.Int("recipes", len(texts)),
	)

	res, err := domain.BatchEmbed(ctx, s.embed, texts)
	if err != nil {
		return fmt.Errorf("embed corpus: %w", err)
	}

	s.matrix = res.Embeddings
	s.logger.Info("Semantic scorer fitted",
		zap.Int("recipes", len(s.matrix)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return nil
}

// LoadFromCache installs a precomputed embedding matrix, skipping the
// embedding step. Returns false on any incompatibility — wrong schema
// version, different model, count mismatch, or cached identifier order
// diverging from the live corpus — and the caller decides whether to fall
// back to Fit.
func (s *Service) LoadFromCache(cache *domain.EmbeddingCache) bool {
	if cache == nil {
		return false
	}
	if cache.SchemaVersion != domain.EmbeddingCacheSchemaVersion {
		s.logger.Warn("Rejecting cache with incompatible schema",
			zap.Int("cache_version", cache.SchemaVersion),
			zap.Int("supported_version", domain.EmbeddingCacheSchemaVersion),
		)
		return false
	}
	if cache.Model != s.model {
		s.logger.Warn("Rejecting cache built with different model",
			zap.String("cache_model", cache.Model),
			zap.String("model", s.model),
		)
		return false
	}
	if !cache.MatchesCorpus(s.corpus) {
		s.logger.Warn("Rejecting cache misaligned with live corpus",
			zap.Int("cached_recipes", cache.NRecipes()),
			zap.Int("corpus_recipes", s.corpus.Len()),
		)
		return false
	}

	s.matrix = cache.Embeddings
	s.logger.Info("Embeddings loaded from cache",
		zap.String("model", cache.Model),
		zap.Int("recipes", cache.NRecipes()),
		zap.Time("created_at", cache.CreatedAt),
	)
	return true
}

// Cache bundles the fitted matrix into a persistable payload.
func (s *Service) Cache() (*domain.EmbeddingCache, error) {
	if s.matrix == nil {
		return nil, domain.ErrNotFitted
	}
	return &domain.EmbeddingCache{
		SchemaVersion: domain.EmbeddingCacheSchemaVersion,
		Model:         s.model,
		RecipeIDs:     s.corpus.IDs(),
		Embeddings:    s.matrix,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Recommend ranks the corpus by cosine similarity to the mean embedding
// of the liked recipes. Same resolution, exclusion, ordering, and
// truncation rules as the lexical scorer.
func (s *Service) Recommend(likedIDs []int, n int, excludeLiked bool) ([]domain.Recipe, error) {
	if s.matrix == nil {
		return nil, domain.ErrNotFitted
	}
	if len(likedIDs) == 0 {
		s.logger.Warn("No liked recipes supplied")
		return []domain.Recipe{}, nil
	}

	positions, err := s.resolve(likedIDs)
	if err != nil {
		return nil, err
	}

	rows := make([][]float32, len(positions))
	for i, pos := range positions {
		rows[i] = s.matrix[pos]
	}
	profile := domain.MeanVector(rows)

	exclude := map[int]bool{}
	if excludeLiked {
		for _, pos := range positions {
			exclude[pos] = true
		}
	}
	return s.top(profile, exclude, n), nil
}

// Similar ranks the corpus against a single recipe's own embedding.
func (s *Service) Similar(id, n int, excludeSelf bool) ([]domain.Recipe, error) {
	if s.matrix == nil {
		return nil, domain.ErrNotFitted
	}

	pos, ok := s.corpus.PositionOf(id)
	if !ok {
		return nil, domain.ErrNotFound
	}

	profile := domain.MeanVector([][]float32{s.matrix[pos]})
	exclude := map[int]bool{}
	if excludeSelf {
		exclude[pos] = true
	}
	return s.top(profile, exclude, n), nil
}

// SearchSemantic embeds an ad-hoc text query and ranks the corpus by
// similarity to it. Free text has no sparse-term representation, so this
// capability exists only on the semantic side.
func (s *Service) SearchSemantic(ctx context.Context, query string, n int) ([]domain.Recipe, error) {
	if s.matrix == nil {
		return nil, domain.ErrNotFitted
	}

	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	profile := domain.MeanVector([][]float32{res.Embedding})
	return s.top(profile, nil, n), nil
}

// ByID returns the recipe with the given identifier.
func (s *Service) ByID(id int) (domain.Recipe, error) {
	return s.corpus.ByID(id)
}

func (s *Service) resolve(likedIDs []int) ([]int, error) {
	positions := make([]int, 0, len(likedIDs))
	for _, id := range likedIDs {
		pos, ok := s.corpus.PositionOf(id)
		if !ok {
			s.logger.Warn("Liked recipe not in corpus", zap.Int("recipe_id", id))
			continue
		}
		positions = append(positions, pos)
	}
	if len(positions) == 0 {
		return nil, domain.ErrInvalidQuery
	}
	return positions, nil
}

func (s *Service) top(profile []float64, exclude map[int]bool, n int) []domain.Recipe {
	if n <= 0 {
		return []domain.Recipe{}
	}

	scores := make([]float64, len(s.matrix))
	for i, row := range s.matrix {
		scores[i] = domain.CosineDense(profile, row)
	}

	results := make([]domain.Recipe, 0, n)
	for _, pos := range domain.RankDescending(scores) {
		if exclude[pos] {
			continue
		}
		results = append(results, s.corpus.At(pos))
		if len(results) >= n {
			break
		}
	}
	return results
}

// compositeText concatenates the recipe fields the embedding space is
// built over: name, description, ingredients, tags.
func compositeText(r domain.Recipe) string {
	parts := []string{
		r.Name,
		r.Description,
		strings.Join(r.Ingredients, " "),
		strings.Join(r.Tags, " "),
	}
	return strings.Join(parts, " ")
}
