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

package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/veridian-systems/evidentia/ai"
	"github.com/veridian-systems/evidentia/core"
	"github.com/veridian-systems/evidentia/index"
)

// Result is one ranked retrieval row paired with its chunk, so callers
// can see page provenance.
type Result struct {
	core.RetrievalResult
	Chunk *core.Chunk
}

// Engine answers hybrid queries against built per-document indexes.
type Engine struct {
	indexRoot string
	embedder  ai.Embedder
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets the logger used by the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a retrieval engine over the given index root. The
// embedder is expected to be the cached decorator so query embeddings
// participate in record/replay.
func NewEngine(indexRoot string, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder must not be nil")
	}

	e := &Engine{
		indexRoot: indexRoot,
		embedder:  embedder,
		logger:    slog.Default().With("component", "retrieval-engine"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Query ranks the document's chunks against the query text and returns
// the top k, ranks starting at 1. alpha is the lexical-weight fraction.
// Fails if no index exists for the document or if the query embedding's
// dimension disagrees with the index.
func (e *Engine) Query(ctx context.Context, docID, text string, k int, alpha float64) ([]Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidAlpha, alpha)
	}

	idx, err := index.Load(e.indexRoot, docID)
	if err != nil {
		return nil, err
	}

	queryVector, err := e.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(queryVector) != idx.Manifest.Dim {
		return nil, &index.DimensionMismatchError{
			DocID: docID,
			Want:  idx.Manifest.Dim,
			Got:   len(queryVector),
		}
	}

	lexical := lexicalScores(idx.Chunks, text)

	results := make([]Result, len(idx.Chunks))
	for i, chunk := range idx.Chunks {
		semantic := (cosine(queryVector, idx.Vectors[i]) + 1.0) / 2.0
		results[i] = Result{
			RetrievalResult: core.RetrievalResult{
				ChunkID:       chunk.ChunkID,
				LexicalScore:  lexical[i],
				SemanticScore: semantic,
				FusedScore:    alpha*lexical[i] + (1.0-alpha)*semantic,
			},
			Chunk: chunk,
		}
	}

	// Descending fused score, ties broken by ascending chunk id so the
	// ranking is reproducible across runs.
	sort.Slice(results, func(i, j int) bool {
		if results[i].FusedScore != results[j].FusedScore {
			return results[i].FusedScore > results[j].FusedScore
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if k < len(results) {
		results = results[:k]
	}
	for i := range results {
		results[i].Rank = i + 1
	}

	e.logger.Debug("query ranked",
		"docID", docID,
		"chunks", len(idx.Chunks),
		"returned", len(results),
		"alpha", alpha)
	return results, nil
}

// lexicalScores computes max-normalized BM25 scores for every chunk.
// A zero maximum leaves all scores at zero.
func lexicalScores(chunks []*core.Chunk, query string) []float64 {
	docs := make([][]string, len(chunks))
	for i, chunk := range chunks {
		docs[i] = tokenize(chunk.Text)
	}
	corpus := newBM25Corpus(docs)
	queryTerms := tokenize(query)

	scores := make([]float64, len(chunks))
	maxScore := 0.0
	for i := range chunks {
		scores[i] = corpus.score(queryTerms, i)
		if scores[i] > maxScore {
			maxScore = scores[i]
		}
	}
	if maxScore > 0 {
		for i := range scores {
			scores[i] /= maxScore
		}
	}
	return scores
}

// cosine computes cosine similarity between two equal-length vectors.
// Zero-norm vectors score 0.
func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
