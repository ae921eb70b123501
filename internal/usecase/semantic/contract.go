package semantic

import (
	"context"

	"github.com/forkcast/forkcast/internal/domain"
)

// Embedder vectorizes text into embeddings. Must be deterministic for a
// fixed model so cached matrices stay reproducible.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
