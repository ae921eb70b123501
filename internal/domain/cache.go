package domain

import "time"

// EmbeddingCacheSchemaVersion is bumped whenever the cache payload layout
// changes, so loaders can reject incompatible old files instead of
// risking silent row misalignment.
const EmbeddingCacheSchemaVersion = 1

// EmbeddingCache is a precomputed semantic vector space: one embedding row
// per recipe, in corpus order. Produced offline, persisted as an opaque
// binary file, and installed via the semantic scorer's LoadFromCache.
// Never partially updated; any corpus change invalidates the whole bundle.
type EmbeddingCache struct {
	SchemaVersion int
	Model         string
	RecipeIDs     []int
	Embeddings    [][]float32
	CreatedAt     time.Time
}

// NRecipes returns the cached item count.
func (c *EmbeddingCache) NRecipes() int { return len(c.RecipeIDs) }

// MatchesCorpus reports whether the cached identifier order matches the
// live corpus exactly. A re-filtered corpus silently misaligns cached rows
// against positions, so loaders must check this before installing.
func (c *EmbeddingCache) MatchesCorpus(corpus *Corpus) bool {
	if len(c.RecipeIDs) != corpus.Len() || len(c.Embeddings) != corpus.Len() {
		return false
	}
	for i, id := range c.RecipeIDs {
		if corpus.IDAt(i) != id {
			return false
		}
	}
	return true
}
