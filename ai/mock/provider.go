package mock

import (
	"context"

	"github.com/veridian-systems/evidentia/ai"
)

// MockGenerator is a test double for ai.Generator.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	callCount int
}

// NewMockGenerator creates a mock generator. Without an injected
// GenerateFunc it echoes a fixed completion.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns the injected completion, or a fixed deterministic one.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.callCount++

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "mock completion", nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// MockProvider aggregates mock services for testing.
type MockProvider struct {
	MockEmbedder  *MockEmbedder
	MockGenerator *MockGenerator
	ModelID       string
}

var _ ai.Provider = (*MockProvider)(nil)

// NewMockProvider creates a provider with deterministic mock services.
// Note: returns the concrete type to allow test assertions on the mocks.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		MockEmbedder:  NewMockEmbedder(),
		MockGenerator: NewMockGenerator(),
		ModelID:       "mock-embedder",
	}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.MockEmbedder
}

// Generator returns the mock generation service.
func (p *MockProvider) Generator() ai.Generator {
	return p.MockGenerator
}

// EmbeddingModelID identifies the mock embedding model.
func (p *MockProvider) EmbeddingModelID() string {
	return p.ModelID
}

// Close releases nothing.
func (p *MockProvider) Close() error {
	return nil
}
