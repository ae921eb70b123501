package domain

import (
	"context"
	"fmt"
)

// Embedder is the shared text vectorization contract between layers.
// Implementations must be deterministic for a fixed model.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single provider call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// EmbeddingResult carries one embedding vector and its token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate
// token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbed vectorizes texts through the provider's native batch call
// when available, falling back to one Embed per text otherwise.
func BatchEmbed(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	if be, ok := e.(BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		return res, nil
	}

	embeddings := make([][]float32, len(texts))
	var totalPrompt, totalTokens int
	for i, text := range texts {
		res, err := e.Embed(ctx, text)
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("fallback embed [%d]: %w", i, err)
		}
		embeddings[i] = res.Embedding
		totalPrompt += res.PromptTokens
		totalTokens += res.TotalTokens
	}

	return BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: totalPrompt,
		TotalTokens:  totalTokens,
	}, nil
}
