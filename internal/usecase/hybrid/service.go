// Package hybrid implements the rank-fusion recommendation engine: the
// lexical and semantic scorers each produce an over-fetched candidate
// list, and the two rankings are merged on a common rank-derived [0,1]
// scale without ever computing a joint vector space.
package hybrid

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/domain"
)

// Scorer is the sub-scorer contract the fusion engine consumes.
type Scorer interface {
	Recommend(likedIDs []int, n int, excludeLiked bool) ([]domain.Recipe, error)
}

// Weights holds the caller-supplied fusion weights. They are not required
// to sum to 1; no normalization is enforced.
type Weights struct {
	TFIDF float64 `yaml:"tfidf"`
	BERT  float64 `yaml:"bert"`
}

// Named weight presets.
var (
	WeightsBalanced  = Weights{TFIDF: 0.5, BERT: 0.5}
	WeightsPrecision = Weights{TFIDF: 0.6, BERT: 0.4}
	WeightsSemantic  = Weights{TFIDF: 0.4, BERT: 0.6}
)

// PresetWeights resolves a named preset. Unknown names fall back to
// balanced.
func PresetWeights(name string) Weights {
	switch name {
	case "precision":
		return WeightsPrecision
	case "semantic":
		return WeightsSemantic
	default:
		return WeightsBalanced
	}
}

// Fitter is implemented by scorers with a blocking fit step.
type Fitter interface {
	Fit(ctx context.Context) error
}

// Service fuses the lexical and semantic scorer rankings.
type Service struct {
	corpus   *domain.Corpus
	lexical  Scorer
	semantic Scorer
	weights  Weights
	logger   *zap.Logger
}

// New creates a fusion engine over two fitted (or to-be-fitted)
// sub-scorers built on the same corpus.
func New(corpus *domain.Corpus, lexical, semantic Scorer, weights Weights, logger *zap.Logger) *Service {
	logger.Info("Hybrid recommender configured",
		zap.Float64("tfidf_weight", weights.TFIDF),
		zap.Float64("bert_weight", weights.BERT),
	)
	return &Service{
		corpus:   corpus,
		lexical:  lexical,
		semantic: semantic,
		weights:  weights,
		logger:   logger,
	}
}

// Fit fits both sub-scorers sequentially, lexical first. Either failure
// aborts the whole fit.
func (s *Service) Fit(ctx context.Context) error {
	for _, sub := range []Scorer{s.lexical, s.semantic} {
		f, ok := sub.(Fitter)
		if !ok {
			continue
		}
		if err := f.Fit(ctx); err != nil {
			return fmt.Errorf("fit sub-scorer: %w", err)
		}
	}
	return nil
}

// Recommend over-fetches 2n candidates from each sub-scorer, assigns each
// item a rank-based score per list ((L-i)/L for 0-based position i), sums
// the weighted scores — an item missing from one list simply omits that
// term — and returns the top n by fused score. Ties resolve by ascending
// recipe identifier. Sub-scorer errors propagate; the engine never
// degrades to single-scorer mode on its own.
func (s *Service) Recommend(likedIDs []int, n int, excludeLiked bool) ([]domain.Recipe, error) {
	lexRecs, err := s.lexical.Recommend(likedIDs, 2*n, excludeLiked)
	if err != nil {
		return nil, fmt.Errorf("lexical recommend: %w", err)
	}

	semRecs, err := s.semantic.Recommend(likedIDs, 2*n, excludeLiked)
	if err != nil {
		return nil, fmt.Errorf("semantic recommend: %w", err)
	}

	fused := fuse(lexRecs, semRecs, s.weights)
	if len(fused) > n {
		fused = fused[:n]
	}

	results := make([]domain.Recipe, 0, len(fused))
	for _, id := range fused {
		r, err := s.corpus.ByID(id)
		if err != nil {
			return nil, fmt.Errorf("resolve fused id %d: %w", id, err)
		}
		results = append(results, r)
	}

	s.logger.Debug("Hybrid recommendations generated",
		zap.Int("lexical_candidates", len(lexRecs)),
		zap.Int("semantic_candidates", len(semRecs)),
		zap.Int("returned", len(results)),
	)
	return results, nil
}

// ByID returns the recipe with the given identifier.
func (s *Service) ByID(id int) (domain.Recipe, error) {
	return s.corpus.ByID(id)
}

// fuse merges two ranked candidate lists into one identifier list ordered
// by fused score descending, then ascending identifier.
func fuse(lexRecs, semRecs []domain.Recipe, w Weights) []int {
	scores := make(map[int]float64, len(lexRecs)+len(semRecs))

	for i, r := range lexRecs {
		scores[r.ID] += w.TFIDF * rankScore(i, len(lexRecs))
	}
	for i, r := range semRecs {
		scores[r.ID] += w.BERT * rankScore(i, len(semRecs))
	}

	ids := make([]int, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool {
		if scores[ids[a]] != scores[ids[b]] {
			return scores[ids[a]] > scores[ids[b]]
		}
		return ids[a] < ids[b]
	})
	return ids
}

// rankScore maps 0-based rank i in a list of length l onto [0,1]: the top
// item scores 1.0, decaying linearly toward 0 at the tail. This puts two
// differently-scaled similarity rankings on a common scale.
func rankScore(i, l int) float64 {
	return float64(l-i) / float64(l)
}
