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

package index

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/veridian-systems/evidentia/ai"
	"github.com/veridian-systems/evidentia/core"
	"github.com/veridian-systems/evidentia/storage"
)

// Builder constructs per-document retrieval indexes from silver evidence.
type Builder struct {
	silver    storage.SilverStore
	embedder  ai.Embedder
	modelID   string
	root      string
	batchSize int
	progress  io.Writer
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Builder.
type Option func(*Builder) error

// WithBatchSize sets the number of chunk texts per embedding call.
// Batch boundaries are part of the cache key, so the same size must be
// used when replaying a recorded run.
func WithBatchSize(size int) Option {
	return func(b *Builder) error {
		if size < 1 {
			return fmt.Errorf("batch size must be >= 1, got %d", size)
		}
		b.batchSize = size
		return nil
	}
}

// WithProgress sets the writer for embedding progress output.
func WithProgress(w io.Writer) Option {
	return func(b *Builder) error {
		if w == nil {
			return fmt.Errorf("progress writer must not be nil")
		}
		b.progress = w
		return nil
	}
}

// WithLogger sets the logger used by the builder.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		b.logger = logger
		return nil
	}
}

// WithClock overrides the manifest timestamp source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) error {
		if now == nil {
			return fmt.Errorf("clock must not be nil")
		}
		b.now = now
		return nil
	}
}

// NewBuilder creates an index builder. The root directory holds one
// subdirectory per document. The embedder is expected to be the cached
// decorator so every build is recordable and replayable.
func NewBuilder(silver storage.SilverStore, embedder ai.Embedder, modelID, root string, opts ...Option) (*Builder, error) {
	if silver == nil {
		return nil, fmt.Errorf("silver store must not be nil")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder must not be nil")
	}
	if modelID == "" {
		return nil, fmt.Errorf("model id must not be empty")
	}

	b := &Builder{
		silver:    silver,
		embedder:  embedder,
		modelID:   modelID,
		root:      root,
		batchSize: 32,
		progress:  io.Discard,
		logger:    slog.Default().With("component", "index-builder"),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Build constructs the index for one document and swaps it in atomically.
// Fails closed if the document has no silver evidence, if the embedding
// service returns a mismatched vector count, or if the vector dimension
// drifts from a previous build.
func (b *Builder) Build(ctx context.Context, docID string) (*Manifest, error) {
	records, err := b.silver.Read(ctx, storage.Filter{DocID: docID})
	if err != nil {
		return nil, err
	}

	chunks := chunksFromRecords(docID, records)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoChunks, docID)
	}

	b.logger.Info("building index",
		"docID", docID,
		"records", len(records),
		"chunks", len(chunks))

	vectors, err := b.embedAll(ctx, chunks)
	if err != nil {
		return nil, err
	}
	dim := len(vectors[0])

	dir := indexDir(b.root, docID)
	prior, err := loadManifest(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, err
	}
	if prior != nil && prior.Dim != dim {
		return nil, &DimensionMismatchError{DocID: docID, Want: prior.Dim, Got: dim}
	}

	manifest := &Manifest{
		DocID:       docID,
		ModelID:     b.modelID,
		Dim:         dim,
		Count:       len(chunks),
		BuiltAt:     b.now(),
		ChunkDigest: chunkDigest(chunks),
	}

	if err := b.swapIn(dir, chunks, vectors, manifest); err != nil {
		return nil, err
	}

	b.logger.Info("index built",
		"docID", docID,
		"chunks", manifest.Count,
		"dim", manifest.Dim)
	return manifest, nil
}

// chunksFromRecords canonicalizes record extracts and deduplicates them
// by canonical-text hash, keeping the first occurrence. Records arrive in
// the store's deterministic order, so chunk ids are stable across builds.
func chunksFromRecords(docID string, records []*core.SilverEvidenceRecord) []*core.Chunk {
	seen := make(map[string]bool, len(records))
	var chunks []*core.Chunk
	for _, record := range records {
		text := core.CanonicalizeText(record.ExtractText)
		if text == "" {
			continue
		}
		sha := core.HashText(text)
		if seen[sha] {
			continue
		}
		seen[sha] = true
		chunks = append(chunks, &core.Chunk{
			ChunkID: len(chunks),
			DocID:   docID,
			Page:    record.PageNo,
			Text:    text,
			TextSHA: sha,
		})
	}
	return chunks
}

// embedAll embeds chunk texts in fixed-size batches, verifying that the
// service returns one vector per text and a consistent dimension.
func (b *Builder) embedAll(ctx context.Context, chunks []*core.Chunk) ([][]float32, error) {
	tracker := NewProgressTracker(b.progress, len(chunks), b.batchSize)
	tracker.Start()
	defer tracker.Finish()

	vectors := make([][]float32, 0, len(chunks))
	dim := 0
	for start := 0; start < len(chunks); start += b.batchSize {
		end := start + b.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Text)
		}

		batch, err := b.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("%w: sent %d texts, got %d vectors",
				ErrEmbeddingCountMismatch, len(texts), len(batch))
		}

		for _, vector := range batch {
			if dim == 0 {
				dim = len(vector)
			} else if len(vector) != dim {
				return nil, &DimensionMismatchError{DocID: chunks[0].DocID, Want: dim, Got: len(vector)}
			}
			vectors = append(vectors, vector)
		}
		tracker.Increment(end - start)
	}
	return vectors, nil
}

// swapIn stages the three artifacts in a sibling directory and renames
// it over any previous build.
func (b *Builder) swapIn(dir string, chunks []*core.Chunk, vectors [][]float32, manifest *Manifest) error {
	stage := dir + ".staging"
	if err := os.RemoveAll(stage); err != nil {
		return err
	}
	if err := os.MkdirAll(stage, 0755); err != nil {
		return err
	}

	if err := writeChunkTable(filepath.Join(stage, chunksFile), chunks); err != nil {
		return err
	}
	if err := writeVectors(filepath.Join(stage, vectorsFile), vectors); err != nil {
		return err
	}
	if err := writeManifest(filepath.Join(stage, manifestFile), manifest); err != nil {
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.Rename(stage, dir)
}
