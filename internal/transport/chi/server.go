// Package chi exposes the recommendation core over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/domain"
	"github.com/forkcast/forkcast/internal/metrics"
)

const (
	defaultRecommendN = 10
	defaultSimilarN   = 5
	defaultSearchN    = 10
	maxN              = 100
)

// Recommender is the scorer contract the HTTP layer consumes.
type Recommender interface {
	Recommend(likedIDs []int, n int, excludeLiked bool) ([]domain.Recipe, error)
	Similar(id, n int, excludeSelf bool) ([]domain.Recipe, error)
	ByID(id int) (domain.Recipe, error)
}

// HybridRecommender fuses the two scorers; it has no Similar of its own.
type HybridRecommender interface {
	Recommend(likedIDs []int, n int, excludeLiked bool) ([]domain.Recipe, error)
	ByID(id int) (domain.Recipe, error)
}

// SemanticSearcher answers free-text semantic queries.
type SemanticSearcher interface {
	SearchSemantic(ctx context.Context, query string, n int) ([]domain.Recipe, error)
}

// FavoritesStore persists liked recipe identifiers.
type FavoritesStore interface {
	Load() []int
	Save(ids []int) bool
}

// Server wires the scorers, favorites store, and ingredient list into an
// HTTP API.
type Server struct {
	lexical     Recommender
	semantic    Recommender
	hybrid      HybridRecommender
	searcher    SemanticSearcher
	favorites   FavoritesStore
	ingredients []string
	logger      *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	lexical, semantic Recommender,
	hybrid HybridRecommender,
	searcher SemanticSearcher,
	favorites FavoritesStore,
	ingredients []string,
	logger *zap.Logger,
) *Server {
	return &Server{
		lexical:     lexical,
		semantic:    semantic,
		hybrid:      hybrid,
		searcher:    searcher,
		favorites:   favorites,
		ingredients: ingredients,
		logger:      logger,
	}
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/recipes/{id}", s.handleGetRecipe)
	r.Get("/recipes/{id}/similar", s.handleSimilar)
	r.Post("/recommendations", s.handleRecommend)
	r.Get("/search", s.handleSearch)
	r.Get("/ingredients", s.handleIngredients)
	r.Get("/favorites", s.handleGetFavorites)
	r.Put("/favorites", s.handlePutFavorites)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recipe id")
		return
	}

	recipe, err := s.lexical.ByID(id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipeToDTO(recipe))
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recipe id")
		return
	}

	n := queryInt(r, "n", defaultSimilarN)
	scorerName := r.URL.Query().Get("scorer")
	scorer, ok := s.scorerByName(scorerName)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scorer "+scorerName)
		return
	}

	start := time.Now()
	recipes, err := scorer.Similar(id, n, true)
	s.observe(scorerName, start, err)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipesToDTO(recipes))
}

type recommendRequest struct {
	LikedIDs     []int  `json:"liked_ids"`
	N            int    `json:"n"`
	ExcludeLiked *bool  `json:"exclude_liked"`
	Scorer       string `json:"scorer"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	n := req.N
	if n <= 0 {
		n = defaultRecommendN
	}
	if n > maxN {
		n = maxN
	}
	excludeLiked := true
	if req.ExcludeLiked != nil {
		excludeLiked = *req.ExcludeLiked
	}

	scorerName := req.Scorer
	if scorerName == "" {
		scorerName = "hybrid"
	}

	var recipes []domain.Recipe
	var err error

	start := time.Now()
	switch scorerName {
	case "hybrid":
		recipes, err = s.hybrid.Recommend(req.LikedIDs, n, excludeLiked)
	case "lexical", "semantic":
		scorer, _ := s.scorerByName(scorerName)
		recipes, err = scorer.Recommend(req.LikedIDs, n, excludeLiked)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scorer "+scorerName)
		return
	}
	s.observe(scorerName, start, err)

	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipesToDTO(recipes))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}
	n := queryInt(r, "n", defaultSearchN)

	start := time.Now()
	recipes, err := s.searcher.SearchSemantic(r.Context(), query, n)
	s.observe("semantic", start, err)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipesToDTO(recipes))
}

func (s *Server) handleIngredients(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"ingredients": s.ingredients})
}

func (s *Server) handleGetFavorites(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]int{"favorites": s.favorites.Load()})
}

type favoritesRequest struct {
	Favorites []int `json:"favorites"`
}

func (s *Server) handlePutFavorites(w http.ResponseWriter, r *http.Request) {
	var req favoritesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if !s.favorites.Save(req.Favorites) {
		writeError(w, http.StatusInternalServerError, "Failed to save favorites")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"favorites": req.Favorites})
}

func (s *Server) scorerByName(name string) (Recommender, bool) {
	switch name {
	case "", "lexical":
		return s.lexical, true
	case "semantic":
		return s.semantic, true
	default:
		return nil, false
	}
}

func (s *Server) observe(scorer string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecommendRequestsTotal.WithLabelValues(scorer, status).Inc()
	metrics.RecommendDuration.WithLabelValues(scorer).Observe(time.Since(start).Seconds())
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Recipe not found")
	case errors.Is(err, domain.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "No liked recipe resolves against the corpus")
	case errors.Is(err, domain.ErrNotFitted):
		writeError(w, http.StatusServiceUnavailable, "Scorer not fitted yet")
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		s.logger.Error("Embedding provider failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Embedding provider unavailable")
	default:
		s.logger.Error("Unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	if v > maxN {
		return maxN
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
