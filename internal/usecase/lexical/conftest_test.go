package lexical

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/domain"
)

// fixtureCorpus holds two pasta dishes, two desserts, and one outlier
// whose tags all get pruned by document frequency.
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

func fittedService(t *testing.T) *Service {
	t.Helper()

	svc := New(fixtureCorpus(t), zap.NewNop())
	if err := svc.Fit(context.Background()); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return svc
}
