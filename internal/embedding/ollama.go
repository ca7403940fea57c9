package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaEmbedder embeds text through an Ollama server's embedding endpoint.
// Results are cached by text.
type OllamaEmbedder struct {
	client     *api.Client
	model      string
	dimensions int
	cache      *Cache
}

// OllamaConfig configures the Ollama embedder.
type OllamaConfig struct {
	BaseURL    string
	Model      string
	Dimensions int
	CacheSize  int
	Timeout    time.Duration
}

// NewOllamaEmbedder creates an embedder talking to the Ollama server at
// cfg.BaseURL (e.g. http://localhost:11434).
func NewOllamaEmbedder(cfg OllamaConfig) (*OllamaEmbedder, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid embedding base URL %q: %w", cfg.BaseURL, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &OllamaEmbedder{
		client:     api.NewClient(base, &http.Client{Timeout: timeout}),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		cache:      NewCache(cacheSize),
	}, nil
}

// Embed returns the embedding for text. Any service failure is returned as-is:
// a document index is never built from partial embeddings.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	resp, err := e.client.Embed(ctx, &api.EmbedRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("embedding service returned no vector")
	}
	vec := resp.Embeddings[0]
	if e.dimensions > 0 && len(vec) != e.dimensions {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(vec), e.dimensions)
	}
	e.cache.Set(text, vec)
	return vec, nil
}

// EmbedBatch embeds each text in order, failing on the first error.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d of %d: %w", i+1, len(texts), err)
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Dimensions returns the configured embedding dimension (0 if autodetected).
func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for OllamaEmbedder.
func (e *OllamaEmbedder) Close() error {
	return nil
}
