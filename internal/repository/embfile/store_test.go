package embfile

import (
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/domain"
)

func newStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func fixtureCache() *domain.EmbeddingCache {
	return &domain.EmbeddingCache{
		SchemaVersion: domain.EmbeddingCacheSchemaVersion,
		Model:         "text-embedding-3-small",
		RecipeIDs:     []int{11, 22, 33},
		Embeddings: [][]float32{
			{0.1, -0.2, 0.3},
			{1, 0, -1},
			{0.5, 0.5, 0.5},
		},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := newStore(t)
	want := fixtureCache()

	if !store.Save("embeddings", want) {
		t.Fatal("Save returned false")
	}
	if !store.Exists("embeddings") {
		t.Fatal("Exists = false after Save")
	}

	got, ok := store.Load("embeddings")
	if !ok {
		t.Fatal("Load = false after Save")
	}

	if got.SchemaVersion != want.SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", got.SchemaVersion, want.SchemaVersion)
	}
	if got.Model != want.Model {
		t.Errorf("Model = %q, want %q", got.Model, want.Model)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if len(got.RecipeIDs) != len(want.RecipeIDs) {
		t.Fatalf("RecipeIDs = %v, want %v", got.RecipeIDs, want.RecipeIDs)
	}
	for i := range want.RecipeIDs {
		if got.RecipeIDs[i] != want.RecipeIDs[i] {
			t.Fatalf("RecipeIDs = %v, want %v", got.RecipeIDs, want.RecipeIDs)
		}
	}
	for i := range want.Embeddings {
		for j := range want.Embeddings[i] {
			if got.Embeddings[i][j] != want.Embeddings[i][j] {
				t.Fatalf("Embeddings[%d][%d] = %v, want %v",
					i, j, got.Embeddings[i][j], want.Embeddings[i][j])
			}
		}
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store := newStore(t)

	if store.Exists("absent") {
		t.Error("Exists = true for absent cache")
	}
	if _, ok := store.Load("absent"); ok {
		t.Error("Load = true for absent cache")
	}
}

func TestStore_LoadTruncated(t *testing.T) {
	store := newStore(t)
	if !store.Save("embeddings", fixtureCache()) {
		t.Fatal("Save returned false")
	}

	path := store.Path("embeddings")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read cache file: %v", err)
	}
	if err := os.WriteFile(path, data[:len(data)/2], 0o644); err != nil {
		t.Fatalf("truncate cache file: %v", err)
	}

	if _, ok := store.Load("embeddings"); ok {
		t.Error("Load = true for truncated cache")
	}
}

func TestStore_LoadBadMagic(t *testing.T) {
	store := newStore(t)
	if err := os.WriteFile(store.Path("embeddings"), []byte("XXXXjunkjunkjunk"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, ok := store.Load("embeddings"); ok {
		t.Error("Load = true for foreign file")
	}
}

func TestStore_LoadImplausibleHeader(t *testing.T) {
	// Header layout after the 4-byte magic: schema version, model length,
	// count, dim, created-at, each a little-endian uint64.
	tests := []struct {
		name   string
		offset int
	}{
		{"model length", 12},
		{"count", 20},
		{"dim", 28},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			if !store.Save("embeddings", fixtureCache()) {
				t.Fatal("Save returned false")
			}

			path := store.Path("embeddings")
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read cache file: %v", err)
			}
			for i := tt.offset; i < tt.offset+8; i++ {
				data[i] = 0xFF
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				t.Fatalf("corrupt cache file: %v", err)
			}

			if _, ok := store.Load("embeddings"); ok {
				t.Error("Load = true for implausible header")
			}
		})
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	store := newStore(t)
	first := fixtureCache()
	if !store.Save("embeddings", first) {
		t.Fatal("Save returned false")
	}

	second := fixtureCache()
	second.Model = "other-model"
	if !store.Save("embeddings", second) {
		t.Fatal("second Save returned false")
	}

	got, ok := store.Load("embeddings")
	if !ok || got.Model != "other-model" {
		t.Fatalf("Load after overwrite: model = %v, ok = %v", got, ok)
	}
}

func TestStore_SaveEmptyMatrix(t *testing.T) {
	store := newStore(t)
	cache := &domain.EmbeddingCache{
		SchemaVersion: domain.EmbeddingCacheSchemaVersion,
		Model:         "m",
		CreatedAt:     time.Now().UTC(),
	}

	if !store.Save("empty", cache) {
		t.Fatal("Save of empty cache returned false")
	}
	got, ok := store.Load("empty")
	if !ok || got.NRecipes() != 0 {
		t.Fatalf("Load of empty cache = %v, %v", got, ok)
	}
}

func TestStore_Delete(t *testing.T) {
	store := newStore(t)
	if !store.Save("embeddings", fixtureCache()) {
		t.Fatal("Save returned false")
	}

	if !store.Delete("embeddings") {
		t.Error("Delete returned false for existing cache")
	}
	if store.Exists("embeddings") {
		t.Error("cache still exists after Delete")
	}
	if store.Delete("embeddings") {
		t.Error("Delete returned true for absent cache")
	}
}

func TestStore_RaggedRowsRejected(t *testing.T) {
	store := newStore(t)
	cache := fixtureCache()
	cache.Embeddings[1] = []float32{1}

	if store.Save("embeddings", cache) {
		t.Fatal("Save accepted ragged embedding rows")
	}
	if store.Exists("embeddings") {
		t.Error("failed Save left a cache file behind")
	}
}

func TestStore_CreatedAtSecondPrecision(t *testing.T) {
	store := newStore(t)
	cache := fixtureCache()
	cache.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 999_000_000, time.UTC)

	if !store.Save("embeddings", cache) {
		t.Fatal("Save returned false")
	}
	got, ok := store.Load("embeddings")
	if !ok {
		t.Fatal("Load returned false")
	}
	// The format stores unix seconds; sub-second precision is dropped.
	want := cache.CreatedAt.Truncate(time.Second)
	if !got.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want)
	}
}
