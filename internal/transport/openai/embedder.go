// Package openai provides the dense text embedder via any
// OpenAI-compatible embeddings API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/domain"
	"github.com/forkcast/forkcast/internal/metrics"
)

// Embedder is an embedding provider using the OpenAI-compatible API.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	provider   string
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Provider   string
	Logger     *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		provider:   cfg.Provider,
		logger:     cfg.Logger,
	}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.request(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// maxBatchInputs is the largest input array the OpenAI embeddings
// endpoint accepts per request.
const maxBatchInputs = 2048

// BatchEmbed implements domain.BatchEmbedder. Inputs beyond the API's
// per-request cap are split into sequential requests and the results
// reassembled in input order, with usage summed across requests.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	if len(texts) <= maxBatchInputs {
		return e.request(ctx, texts)
	}

	out := domain.BatchEmbeddingResult{
		Embeddings: make([][]float32, 0, len(texts)),
	}
	for start := 0; start < len(texts); start += maxBatchInputs {
		end := start + maxBatchInputs
		if end > len(texts) {
			end = len(texts)
		}
		res, err := e.request(ctx, texts[start:end])
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch chunk %d-%d: %w", start, end, err)
		}
		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}
	return out, nil
}

func (e *Embedder) request(ctx context.Context, input []string) (domain.BatchEmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          input,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	model := string(e.model)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, "error").Inc()
		return domain.BatchEmbeddingResult{}, parseAPIError(err)
	}
	if len(resp.Data) != len(input) {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, "error").Inc()
		return domain.BatchEmbeddingResult{}, fmt.Errorf(
			"got %d embeddings for %d inputs: %w",
			len(resp.Data), len(input), domain.ErrEmbeddingProviderError,
		)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, model, "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, model, "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	embeddings := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		embeddings[d.Index] = d.Embedding
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrEmbeddingProviderError.
func parseAPIError(err error) error {
	wrap := domain.ErrEmbeddingProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("embedding API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("embedding request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
