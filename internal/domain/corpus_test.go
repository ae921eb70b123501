package domain

import (
	"errors"
	"testing"
)

func testRecipes() []Recipe {
	return []Recipe{
		NewRecipe(101, "pasta", "simple pasta", 20,
			[]string{"italian", "dinner"}, []float64{300, 10, 5, 2, 8, 40, 12},
			[]string{"pasta", "olive oil"}, []string{"boil", "drain"}),
		NewRecipe(202, "salad", "green salad", 10,
			[]string{"healthy", "lunch"}, []float64{120, 5, 2, 0, 3, 10, 4},
			[]string{"lettuce", "olive oil"}, []string{"chop", "toss"}),
		NewRecipe(303, "cake", "chocolate cake", 60,
			[]string{"dessert"}, []float64{450, 20, 35, 10, 6, 55, 6},
			[]string{"flour", "sugar", "cocoa"}, []string{"mix", "bake"}),
	}
}

func TestNewCorpus_Empty(t *testing.T) {
	if _, err := NewCorpus(nil); !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("NewCorpus(nil) error = %v, want ErrEmptyCorpus", err)
	}
	if _, err := NewCorpus([]Recipe{}); !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("NewCorpus(empty) error = %v, want ErrEmptyCorpus", err)
	}
}

func TestCorpus_Lookups(t *testing.T) {
	corpus, err := NewCorpus(testRecipes())
	if err != nil {
		t.Fatalf("NewCorpus: %v", err)
	}

	if corpus.Len() != 3 {
		t.Errorf("Len() = %d, want 3", corpus.Len())
	}

	pos, ok := corpus.PositionOf(202)
	if !ok || pos != 1 {
		t.Errorf("PositionOf(202) = %d, %v, want 1, true", pos, ok)
	}
	if _, ok := corpus.PositionOf(999); ok {
		t.Error("PositionOf(999) resolved, want miss")
	}

	if id := corpus.IDAt(2); id != 303 {
		t.Errorf("IDAt(2) = %d, want 303", id)
	}
	if got := corpus.At(0).Name; got != "pasta" {
		t.Errorf("At(0).Name = %q, want pasta", got)
	}
}

func TestCorpus_ByID(t *testing.T) {
	corpus, err := NewCorpus(testRecipes())
	if err != nil {
		t.Fatalf("NewCorpus: %v", err)
	}

	r, err := corpus.ByID(303)
	if err != nil {
		t.Fatalf("ByID(303): %v", err)
	}
	if r.ID != 303 {
		t.Errorf("ByID(303).ID = %d, want 303", r.ID)
	}

	// Idempotent
	again, err := corpus.ByID(303)
	if err != nil || again.ID != r.ID {
		t.Errorf("second ByID(303) = %v, %v", again.ID, err)
	}

	if _, err := corpus.ByID(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("ByID(999) error = %v, want ErrNotFound", err)
	}
}

func TestCorpus_IDsIsCopy(t *testing.T) {
	corpus, err := NewCorpus(testRecipes())
	if err != nil {
		t.Fatalf("NewCorpus: %v", err)
	}

	ids := corpus.IDs()
	ids[0] = -1
	if corpus.IDAt(0) != 101 {
		t.Error("mutating IDs() result changed corpus state")
	}
}
