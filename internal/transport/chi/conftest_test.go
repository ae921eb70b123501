package chi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/domain"
)

type mockRecommender struct {
	recs         []domain.Recipe
	recommendErr error
	similarErr   error
	byIDErr      error
	gotLiked     []int
	gotN         int
	gotExclude   bool
}

func (m *mockRecommender) Recommend(likedIDs []int, n int, excludeLiked bool) ([]domain.Recipe, error) {
	m.gotLiked = likedIDs
	m.gotN = n
	m.gotExclude = excludeLiked
	if m.recommendErr != nil {
		return nil, m.recommendErr
	}
	return m.recs, nil
}

func (m *mockRecommender) Similar(_, n int, _ bool) ([]domain.Recipe, error) {
	m.gotN = n
	if m.similarErr != nil {
		return nil, m.similarErr
	}
	return m.recs, nil
}

func (m *mockRecommender) ByID(id int) (domain.Recipe, error) {
	if m.byIDErr != nil {
		return domain.Recipe{}, m.byIDErr
	}
	for _, r := range m.recs {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Recipe{}, domain.ErrNotFound
}

type mockSearcher struct {
	recs     []domain.Recipe
	err      error
	gotQuery string
	gotN     int
}

func (m *mockSearcher) SearchSemantic(_ context.Context, query string, n int) ([]domain.Recipe, error) {
	m.gotQuery = query
	m.gotN = n
	if m.err != nil {
		return nil, m.err
	}
	return m.recs, nil
}

type mockFavorites struct {
	ids      []int
	saveFail bool
}

func (m *mockFavorites) Load() []int { return m.ids }

func (m *mockFavorites) Save(ids []int) bool {
	if m.saveFail {
		return false
	}
	m.ids = ids
	return true
}

type fixture struct {
	lexical   *mockRecommender
	semantic  *mockRecommender
	hybrid    *mockRecommender
	searcher  *mockSearcher
	favorites *mockFavorites
	handler   http.Handler
}

func sampleRecipes() []domain.Recipe {
	return []domain.Recipe{
		domain.NewRecipe(1, "garlic pasta", "quick dinner", 20,
			[]string{"italian"}, []float64{300, 10, 5, 2, 8, 40, 12},
			[]string{"spaghetti", "garlic"}, []string{"boil", "toss"}),
		domain.NewRecipe(2, "mud pie", "rich dessert", 45,
			[]string{"dessert"}, []float64{450, 20, 35, 10, 6, 55, 6},
			[]string{"cocoa", "flour"}, []string{"mix", "bake"}),
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	recs := sampleRecipes()
	f := &fixture{
		lexical:   &mockRecommender{recs: recs},
		semantic:  &mockRecommender{recs: recs},
		hybrid:    &mockRecommender{recs: recs},
		searcher:  &mockSearcher{recs: recs},
		favorites: &mockFavorites{ids: []int{1}},
	}
	srv := NewServer(f.lexical, f.semantic, f.hybrid, f.searcher, f.favorites,
		[]string{"garlic", "flour"}, zap.NewNop())
	f.handler = srv.Router()
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
