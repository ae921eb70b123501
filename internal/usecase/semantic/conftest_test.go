package semantic

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/domain"
)

const fixtureModel = "fake-embed-v1"

// fakeEmbedder maps texts onto a 3-axis cuisine space so similarity is
// fully predictable: pasta dishes on one axis, desserts on another,
// barbecue on the third.
type fakeEmbedder struct {
	embedCalls int
	batchCalls int
	err        error
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.embedCalls++
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	return domain.EmbeddingResult{Embedding: axisVector(text), TotalTokens: 1}, nil
}

func (e *fakeEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	e.batchCalls++
	if e.err != nil {
		return domain.BatchEmbeddingResult{}, e.err
	}
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = axisVector(text)
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: len(texts)}, nil
}

func axisVector(text string) []float32 {
	lower := strings.ToLower(text)
	count := func(kws ...string) float32 {
		var n float32
		for _, kw := range kws {
			n += float32(strings.Count(lower, kw))
		}
		return n
	}
	return []float32{
		count("pasta", "spaghetti", "fettuccine"),
		count("dessert", "sweet", "tart", "brownie"),
		count("grill", "barbecue", "ribs"),
	}
}

func fixtureCorpus(t *testing.T) *domain.Corpus {
	t.Helper()

	recipes := []domain.Recipe{
		domain.NewRecipe(1, "spaghetti aglio e olio", "", 20,
			[]string{"italian", "pasta", "quick"}, nil,
			[]string{"spaghetti", "garlic"}, []string{"boil", "toss"}),
		domain.NewRecipe(2, "fettuccine alfredo", "", 30,
			[]string{"italian", "pasta", "creamy"}, nil,
			[]string{"fettuccine", "cream"}, []string{"boil", "mix"}),
		domain.NewRecipe(3, "chocolate brownie", "", 45,
			[]string{"dessert", "chocolate", "sweet"}, nil,
			[]string{"cocoa", "flour"}, []string{"mix", "bake"}),
		domain.NewRecipe(4, "fruit tart", "", 50,
			[]string{"dessert", "fruit", "sweet"}, nil,
			[]string{"berries", "pastry"}, []string{"bake", "top"}),
		domain.NewRecipe(5, "smoked ribs", "", 240,
			[]string{"grill", "barbecue", "smoky"}, nil,
			[]string{"ribs", "rub"}, []string{"smoke"}),
	}

	corpus, err := domain.NewCorpus(recipes)
	if err != nil {
		t.Fatalf("building fixture corpus: %v", err)
	}
	return corpus
}

func fittedService(t *testing.T) (*Service, *fakeEmbedder) {
	t.Helper()

	embed := &fakeEmbedder{}
	svc := New(fixtureCorpus(t), embed, fixtureModel, zap.NewNop())
	if err := svc.Fit(context.Background()); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return svc, embed
}
