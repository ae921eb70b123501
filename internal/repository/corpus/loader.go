// Package corpus loads the Food.com recipe dataset from CSV: raw recipe
// records plus user interactions, aggregated into mean ratings that
// select the corpus, and a frequent-ingredient list for filter widgets.
package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/domain"
)

// ErrMissingData signals absent prerequisite dataset files.
var ErrMissingData = errors.New("missing dataset files")

const (
	recipesFile      = "RAW_recipes.csv"
	interactionsFile = "RAW_interactions.csv"

	defaultMinRating = 3.0
	defaultTopN      = 50000
	topIngredients   = 1100
)

// Result is a loaded corpus: recipes in CSV order plus the most frequent
// ingredient strings, ordered by descending count.
type Result struct {
	Recipes     []domain.Recipe
	Ingredients []string
}

// Loader reads and filters the recipe dataset.
type Loader struct {
	dataDir   string
	minRating float64
	topN      int
	logger    *zap.Logger
}

// New creates a loader over a dataset directory with the standard
// filtering: recipes rated at least 3.0, capped at the 50000 best-rated.
func New(dataDir string, logger *zap.Logger) *Loader {
	return &Loader{
		dataDir:   dataDir,
		minRating: defaultMinRating,
		topN:      defaultTopN,
		logger:    logger,
	}
}

// WithFilter overrides the rating threshold and corpus cap.
func (l *Loader) WithFilter(minRating float64, topN int) *Loader {
	l.minRating = minRating
	l.topN = topN
	return l
}

// Load reads the dataset, aggregates ratings, filters the corpus, and
// extracts frequent ingredients. Fails if a prerequisite file is absent.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	if missing := l.missingFiles(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingData, missing)
	}

	ratings, err := l.loadRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	keep := l.selectRecipes(ratings)
	l.logger.Info("Recipes selected by rating",
		zap.Int("selected", len(keep)),
		zap.Float64("min_rating", l.minRating),
	)

	recipes, err := l.loadRecipes(ctx, keep)
	if err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}
	if len(recipes) == 0 {
		return nil, fmt.Errorf("no recipes survived filtering: %w", domain.ErrEmptyCorpus)
	}

	ingredients := frequentIngredients(recipes, topIngredients)

	l.logger.Info("Corpus loaded",
		zap.Int("recipes", len(recipes)),
		zap.Int("ingredients", len(ingredients)),
	)
	return &Result{Recipes: recipes, Ingredients: ingredients}, nil
}

func (l *Loader) missingFiles() []string {
	var missing []string
	for _, name := range []string{recipesFile, interactionsFile} {
		if _, err := os.Stat(filepath.Join(l.dataDir, name)); err != nil {
			l.logger.Warn("Dataset file missing", zap.String("file", name))
			missing = append(missing, name)
		}
	}
	return missing
}

// loadRatings aggregates interaction rows into a mean rating per recipe.
func (l *Loader) loadRatings(ctx context.Context) (map[int]float64, error) {
	f, err := os.Open(filepath.Join(l.dataDir, interactionsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := columnIndex(header)
	idCol, ok := cols["recipe_id"]
	if !ok {
		return nil, fmt.Errorf("missing recipe_id column")
	}
	ratingCol, ok := cols["rating"]
	if !ok {
		return nil, fmt.Errorf("missing rating column")
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read interactions row: %w", err)
		}

		id, err := strconv.Atoi(row[idCol])
		if err != nil {
			continue
		}
		rating, err := strconv.ParseFloat(row[ratingCol], 64)
		if err != nil {
			continue
		}
		sums[id] += rating
		counts[id]++
	}

	means := make(map[int]float64, len(sums))
	for id, sum := range sums {
		means[id] = sum / float64(counts[id])
	}
	return means, nil
}

// selectRecipes keeps the topN best-rated recipes at or above the rating
// threshold.
func (l *Loader) selectRecipes(ratings map[int]float64) map[int]bool {
	type rated struct {
		id     int
		rating float64
	}
	all := make([]rated, 0, len(ratings))
	for id, r := range ratings {
		all = append(all, rated{id: id, rating: r})
	}
	sort.Slice(all, func(a, b int) bool {
		if all[a].rating != all[b].rating {
			return all[a].rating > all[b].rating
		}
		return all[a].id < all[b].id
	})

	if l.topN > 0 && len(all) > l.topN {
		all = all[:l.topN]
	}

	keep := make(map[int]bool, len(all))
	for _, r := range all {
		if r.rating >= l.minRating {
			keep[r.id] = true
		}
	}
	return keep
}

// loadRecipes reads the raw recipe file, keeping rows in file order.
// Malformed rows are logged and skipped.
func (l *Loader) loadRecipes(ctx context.Context, keep map[int]bool) ([]domain.Recipe, error) {
	f, err := os.Open(filepath.Join(l.dataDir, recipesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := columnIndex(header)
	for _, name := range []string{"id", "name", "minutes", "tags", "nutrition", "steps", "description", "ingredients"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing %s column", name)
		}
	}

	var recipes []domain.Recipe
	seen := make(map[int]bool, len(keep))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read recipes row: %w", err)
		}

		id, err := strconv.Atoi(row[cols["id"]])
		if err != nil || !keep[id] || seen[id] {
			continue
		}

		recipe, err := parseRecipe(row, cols, id)
		if err != nil {
			l.logger.Warn("Skipping malformed recipe row",
				zap.Int("recipe_id", id), zap.Error(err))
			continue
		}
		seen[id] = true
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

func parseRecipe(row []string, cols map[string]int, id int) (domain.Recipe, error) {
	minutes, err := strconv.Atoi(row[cols["minutes"]])
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("minutes: %w", err)
	}
	tags, err := parseStringList(row[cols["tags"]])
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("tags: %w", err)
	}
	nutrition, err := parseFloatList(row[cols["nutrition"]])
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("nutrition: %w", err)
	}
	ingredients, err := parseStringList(row[cols["ingredients"]])
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("ingredients: %w", err)
	}
	steps, err := parseStringList(row[cols["steps"]])
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("steps: %w", err)
	}

	return domain.NewRecipe(
		id,
		row[cols["name"]],
		row[cols["description"]],
		minutes,
		tags, nutrition, ingredients, steps,
	), nil
}

// frequentIngredients returns the topN most frequent ingredient strings,
// ordered by descending count (ties by name).
func frequentIngredients(recipes []domain.Recipe, topN int) []string {
	counts := make(map[string]int)
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			counts[ing]++
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(a, b int) bool {
		if counts[names[a]] != counts[names[b]] {
			return counts[names[a]] > counts[names[b]]
		}
		return names[a] < names[b]
	})

	if topN > 0 && len(names) > topN {
		names = names[:topN]
	}
	return names
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	return cols
}
