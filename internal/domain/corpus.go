package domain

// Corpus is a fitted, closed-world snapshot of recipes. Order defines the
// implicit index space shared by every scorer built over it, so scorers
// must all be constructed from the same Corpus instance.
type Corpus struct {
	recipes []Recipe
	idToPos map[int]int
	posToID []int
}

// NewCorpus builds a corpus index over an ordered recipe list.
// Identifiers must be unique; later duplicates would shadow earlier
// positions, so loading is expected to deduplicate upstream.
func NewCorpus(recipes []Recipe) (*Corpus, error) {
	if len(recipes) == 0 {
		return nil, ErrEmptyCorpus
	}

	idToPos := make(map[int]int, len(recipes))
	posToID := make([]int, len(recipes))
	for i, r := range recipes {
		idToPos[r.ID] = i
		posToID[i] = r.ID
	}

	return &Corpus{recipes: recipes, idToPos: idToPos, posToID: posToID}, nil
}

// Len returns the number of recipes.
func (c *Corpus) Len() int { return len(c.recipes) }

// PositionOf resolves a recipe identifier to its corpus position.
func (c *Corpus) PositionOf(id int) (int, bool) {
	pos, ok := c.idToPos[id]
	return pos, ok
}

// IDAt returns the recipe identifier at a corpus position.
func (c *Corpus) IDAt(pos int) int { return c.posToID[pos] }

// At returns the recipe at a corpus position.
func (c *Corpus) At(pos int) Recipe { return c.recipes[pos] }

// ByID returns the recipe with the given identifier.
func (c *Corpus) ByID(id int) (Recipe, error) {
	pos, ok := c.idToPos[id]
	if !ok {
		return Recipe{}, ErrNotFound
	}
	return c.recipes[pos], nil
}

// IDs returns the identifiers in corpus order. The slice is a copy.
func (c *Corpus) IDs() []int {
	ids := make([]int, len(c.posToID))
	copy(ids, c.posToID)
	return ids
}

// Recipes returns the underlying ordered recipe list. Callers must treat
// it as read-only.
func (c *Corpus) Recipes() []Recipe { return c.recipes }
