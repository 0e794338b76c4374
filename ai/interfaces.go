package ai

import "context"

// Embedder generates dense vector embeddings from text for semantic
// similarity scoring. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// one batch. The returned slice preserves input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces free-form text completions for a prompt. The core
// pipeline only ever calls it through the deterministic call cache.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate returns the model completion for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Provider aggregates the external model services for convenient
// initialization and lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Generator returns the text generation service.
	Generator() Generator

	// EmbeddingModelID identifies the embedding model; it is bound into
	// index manifests and cache keys so swapping models is detectable.
	EmbeddingModelID() string

	// Close releases resources held by the provider and its services.
	Close() error
}
