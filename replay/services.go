// Copyright 2025 Veridian Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package replay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/veridian-systems/evidentia/ai"
)

// Call types recorded in cache entries and the ledger.
const (
	CallTypeEmbed    = "embed"
	CallTypeGenerate = "generate"
)

// CachedEmbedder routes every embedding call through the cache. In
// replay mode the wrapped embedder is never invoked.
type CachedEmbedder struct {
	inner   ai.Embedder
	cache   *Cache
	modelID string
}

var _ ai.Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps an embedder with the cache. The model id is
// part of the cache key so entries from different models never collide.
func NewCachedEmbedder(inner ai.Embedder, cache *Cache, modelID string) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache, modelID: modelID}
}

// EmbedText embeds a single text through the cache.
func (e *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed: expected 1 vector, got %d", len(vectors))
	}
	return vectors[0], nil
}

// EmbedTexts embeds a batch of texts through the cache. The whole batch
// is one cache entry, so batch boundaries must be stable across runs for
// replay to hit.
func (e *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	input, err := json.Marshal(texts)
	if err != nil {
		return nil, fmt.Errorf("encode embed input: %w", err)
	}

	output, err := e.cache.Do(ctx, CallTypeEmbed, Params{"model": e.modelID}, input,
		func(ctx context.Context) ([]byte, error) {
			vectors, err := e.inner.EmbedTexts(ctx, texts)
			if err != nil {
				return nil, err
			}
			return json.Marshal(vectors)
		})
	if err != nil {
		return nil, err
	}

	var vectors [][]float32
	if err := json.Unmarshal(output, &vectors); err != nil {
		return nil, fmt.Errorf("%w: decode embed output: %w", ErrEntryCorrupt, err)
	}
	return vectors, nil
}

// CachedGenerator routes every generation call through the cache.
type CachedGenerator struct {
	inner   ai.Generator
	cache   *Cache
	modelID string
}

var _ ai.Generator = (*CachedGenerator)(nil)

// NewCachedGenerator wraps a generator with the cache.
func NewCachedGenerator(inner ai.Generator, cache *Cache, modelID string) *CachedGenerator {
	return &CachedGenerator{inner: inner, cache: cache, modelID: modelID}
}

// Generate produces a completion through the cache.
func (g *CachedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	output, err := g.cache.Do(ctx, CallTypeGenerate, Params{"model": g.modelID}, []byte(prompt),
		func(ctx context.Context) ([]byte, error) {
			completion, err := g.inner.Generate(ctx, prompt)
			if err != nil {
				return nil, err
			}
			return json.Marshal(completion)
		})
	if err != nil {
		return "", err
	}

	var completion string
	if err := json.Unmarshal(output, &completion); err != nil {
		return "", fmt.Errorf("%w: decode generate output: %w", ErrEntryCorrupt, err)
	}
	return completion, nil
}
