package lexical

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/domain"
)

func TestRecommend_NotFitted(t *testing.T) {
	svc := New(fixtureCorpus(t), zap.NewNop())

	if _, err := svc.Recommend([]int{1}, 5, true); !errors.Is(err, domain.ErrNotFitted) {
		t.Fatalf("Recommend before Fit: error = %v, want ErrNotFitted", err)
	}
	if _, err := svc.Similar(1, 5, true); !errors.Is(err, domain.ErrNotFitted) {
		t.Fatalf("Similar before Fit: error = %v, want ErrNotFitted", err)
	}
}

func TestRecommend_NearestByTags(t *testing.T) {
	svc := fittedService(t)

	recs, err := svc.Recommend([]int{1}, 1, true)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len(recs) = %d, want 1", len(recs))
	}
	// Recipe 2 shares the italian/pasta tag profile with recipe 1.
	if recs[0].ID != 2 {
		t.Errorf("top recommendation = %d, want 2", recs[0].ID)
	}
}

func TestRecommend_EmptyLiked(t *testing.T) {
	svc := fittedService(t)

	recs, err := svc.Recommend(nil, 5, true)
	if err != nil {
		t.Fatalf("Recommend(nil): %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("Recommend(nil) returned %d recipes, want 0", len(recs))
	}
}

func TestRecommend_AllUnknown(t *testing.T) {
	svc := fittedService(t)

	if _, err := svc.Recommend([]int{7777, 8888}, 5, true); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("Recommend(unknown only): error = %v, want ErrInvalidQuery", err)
	}
}

func TestRecommend_SkipsUnknown(t *testing.T) {
	svc := fittedService(t)

	recs, err := svc.Recommend([]int{1, 7777}, 1, true)
	if err != nil {
		t.Fatalf("Recommend with partial unknowns: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != 2 {
		t.Errorf("recs = %v, want [2]", ids(recs))
	}
}

func TestRecommend_ExcludeLiked(t *testing.T) {
	svc := fittedService(t)

	recs, err := svc.Recommend([]int{1, 2}, 10, true)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for _, r := range recs {
		if r.ID == 1 || r.ID == 2 {
			t.Errorf("liked recipe %d present with excludeLiked=true", r.ID)
		}
	}

	recs, err = svc.Recommend([]int{1, 2}, 10, false)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	found := map[int]bool{}
	for _, r := range recs {
		found[r.ID] = true
	}
	if !found[1] || !found[2] {
		t.Errorf("liked recipes absent with excludeLiked=false: got %v", ids(recs))
	}
}

func TestRecommend_OversizedN(t *testing.T) {
	svc := fittedService(t)

	recs, err := svc.Recommend([]int{1}, 100, true)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	// Corpus has 5 recipes, one excluded.
	if len(recs) != 4 {
		t.Errorf("len(recs) = %d, want 4", len(recs))
	}
}

func TestRecommend_ZeroN(t *testing.T) {
	svc := fittedService(t)

	recs, err := svc.Recommend([]int{1}, 0, true)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("Recommend with n=0 returned %d recipes", len(recs))
	}
}

func TestSimilar(t *testing.T) {
	svc := fittedService(t)

	recs, err := svc.Similar(3, 1, true)
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != 4 {
		t.Errorf("Similar(3) top = %v, want [4]", ids(recs))
	}

	recs, err = svc.Similar(3, 1, false)
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != 3 {
		t.Errorf("Similar(3, excludeSelf=false) top = %v, want [3]", ids(recs))
	}
}

func TestSimilar_Unknown(t *testing.T) {
	svc := fittedService(t)

	if _, err := svc.Similar(7777, 5, true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Similar(unknown): error = %v, want ErrNotFound", err)
	}
}

func TestByID(t *testing.T) {
	svc := fittedService(t)

	r, err := svc.ByID(4)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if r.Name != "fruit tart" {
		t.Errorf("ByID(4).Name = %q", r.Name)
	}

	if _, err := svc.ByID(7777); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ByID(unknown): error = %v, want ErrNotFound", err)
	}
}

func TestRecommend_Deterministic(t *testing.T) {
	svc := fittedService(t)

	first, err := svc.Recommend([]int{1, 3}, 5, true)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := svc.Recommend([]int{1, 3}, 5, true)
		if err != nil {
			t.Fatalf("Recommend: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d returned %d recipes, first run %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j].ID != first[j].ID {
				t.Fatalf("run %d order %v differs from first %v", i, ids(again), ids(first))
			}
		}
	}
}

func ids(recs []domain.Recipe) []int {
	out := make([]int, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}
