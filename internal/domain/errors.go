package domain

import "errors"

var (
	// ErrEmptyCorpus signals an attempt to build a scorer over zero recipes.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrNotFitted signals a query against a scorer before Fit or LoadFromCache.
	ErrNotFitted = errors.New("scorer not fitted")
	// ErrInvalidQuery signals that no supplied liked identifier resolved against the corpus.
	ErrInvalidQuery = errors.New("no valid liked recipes")
	// ErrNotFound signals a missing recipe.
	ErrNotFound = errors.New("recipe not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
