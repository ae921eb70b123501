// Package lexical implements the sparse tag-based recipe scorer: TF-IDF
// over each recipe's joined tag string, queried by cosine similarity
// against a mean profile of liked recipes.
package lexical

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/domain"
	"github.com/forkcast/forkcast/internal/vectorize"
)

// Service is the lexical scorer. Fit replaces internal state
// non-atomically; queries are read-only and safe to run concurrently once
// fitting is complete.
type Service struct {
	corpus *domain.Corpus
	vec    *vectorize.TFIDF
	matrix []vectorize.SparseVector
	logger *zap.Logger
}

// New creates a lexical scorer over a fitted corpus.
func New(corpus *domain.Corpus, logger *zap.Logger) *Service {
	return &Service{corpus: corpus, logger: logger}
}

// Fit builds the sparse weighted-term matrix over per-recipe tag
// documents. Re-calling replaces the matrix. The context matches the
// scorer fit contract; the build itself is pure CPU and never fails.
func (s *Service) Fit(_ context.Context) error {
	docs := make([]string, s.corpus.Len())
	for i := 0; i < s.corpus.Len(); i++ {
		docs[i] = strings.Join(s.corpus.At(i).Tags, " ")
	}

	vec := vectorize.NewTFIDF()
	s.matrix = vec.FitTransform(docs)
	s.vec = vec

	s.logger.Info("Lexical scorer fitted",
		zap.Int("recipes", s.corpus.Len()),
		zap.Int("features", vec.NFeatures()),
	)
	return nil
}

// Recommend ranks the corpus by cosine similarity to the mean profile of
// the liked recipes and returns the top n. Unknown identifiers are logged
// and skipped; if none resolve the query fails with ErrInvalidQuery. An
// empty liked list returns an empty result, not an error.
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

	rows := make([]vectorize.SparseVector, len(positions))
	for i, pos := range positions {
		rows[i] = s.matrix[pos]
	}
	profile := vectorize.Mean(rows)

	exclude := map[int]bool{}
	if excludeLiked {
		for _, pos := range positions {
			exclude[pos] = true
		}
	}

	recs := s.top(profile, exclude, n)
	s.logger.Debug("Lexical recommendations generated",
		zap.Int("liked", len(positions)),
		zap.Int("returned", len(recs)),
	)
	return recs, nil
}

// Similar ranks the corpus against a single recipe's own row.
func (s *Service) Similar(id, n int, excludeSelf bool) ([]domain.Recipe, error) {
	if s.matrix == nil {
		return nil, domain.ErrNotFitted
	}

	pos, ok := s.corpus.PositionOf(id)
	if !ok {
		return nil, domain.ErrNotFound
	}

	exclude := map[int]bool{}
	if excludeSelf {
		exclude[pos] = true
	}
	return s.top(s.matrix[pos], exclude, n), nil
}

// ByID returns the recipe with the given identifier.
func (s *Service) ByID(id int) (domain.Recipe, error) {
	return s.corpus.ByID(id)
}

// resolve maps liked identifiers to corpus positions, skipping unknowns.
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

// top scores every corpus row against the profile, orders by similarity
// descending (ties keep corpus order), drops excluded positions, and
// truncates to n.
func (s *Service) top(profile vectorize.SparseVector, exclude map[int]bool, n int) []domain.Recipe {
	if n <= 0 {
		return []domain.Recipe{}
	}

	scores := make([]float64, len(s.matrix))
	for i, row := range s.matrix {
		scores[i] = vectorize.Cosine(profile, row)
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
