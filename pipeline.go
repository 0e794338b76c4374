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

// Package evidentia assembles the evidence pipeline: bronze ingestion,
// normalization into silver, per-document index builds, hybrid retrieval,
// and parity-checked evidence selection, with every external model call
// routed through the record/replay cache.
package evidentia

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/veridian-systems/evidentia/ai"
	"github.com/veridian-systems/evidentia/ai/openai"
	"github.com/veridian-systems/evidentia/catalog"
	"github.com/veridian-systems/evidentia/core"
	"github.com/veridian-systems/evidentia/index"
	"github.com/veridian-systems/evidentia/normalize"
	"github.com/veridian-systems/evidentia/replay"
	"github.com/veridian-systems/evidentia/retrieval"
	"github.com/veridian-systems/evidentia/selector"
	"github.com/veridian-systems/evidentia/storage"
	"github.com/veridian-systems/evidentia/storage/partition"
)

// Subdirectories of the pipeline root.
const (
	bronzeDir  = "bronze"
	silverDir  = "silver"
	indexesDir = "indexes"
	cacheDir   = "cache"
	catalogDir = "catalog"
)

// Pipeline wires the pipeline stages over one root directory.
type Pipeline struct {
	root           string
	bronze         storage.BronzeStore
	silver         storage.SilverStore
	lineage        *catalog.Catalog
	lineageBackend *catalog.Backend
	provider       ai.Provider
	cache          *replay.Cache
	embedder       ai.Embedder
	builder        *index.Builder
	engine         *retrieval.Engine
	pool           *ants.Pool
	alpha          float64
	topK           int
	schedule       normalize.Schedule
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*pipelineOptions)

type pipelineOptions struct {
	aiConfig  *ai.Config
	provider  ai.Provider
	alpha     float64
	topK      int
	cacheMode replay.Mode
	schedule  normalize.Schedule
	batchSize int
	poolSize  int
	logger    *slog.Logger
}

// WithAlpha sets the lexical-weight fraction used by Query. Default 0.6.
func WithAlpha(alpha float64) Option {
	return func(o *pipelineOptions) {
		o.alpha = alpha
	}
}

// WithTopK sets the top-K size used by Query. Default 20.
func WithTopK(k int) Option {
	return func(o *pipelineOptions) {
		o.topK = k
	}
}

// WithCacheMode sets the external-call cache mode. Default fetch.
func WithCacheMode(mode replay.Mode) Option {
	return func(o *pipelineOptions) {
		o.cacheMode = mode
	}
}

// WithFreshnessSchedule overrides the normalizer's age bucket table.
func WithFreshnessSchedule(schedule normalize.Schedule) Option {
	return func(o *pipelineOptions) {
		o.schedule = schedule
	}
}

// WithAIConfig sets the model service configuration.
func WithAIConfig(config *ai.Config) Option {
	return func(o *pipelineOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a model provider directly, bypassing the AI
// config. Used by tests and replay-only runs.
func WithProvider(provider ai.Provider) Option {
	return func(o *pipelineOptions) {
		o.provider = provider
	}
}

// WithEmbedBatchSize sets the number of chunk texts per embedding call.
// Default 32. Part of the cache key shape: replaying a recorded run
// requires the same batch size.
func WithEmbedBatchSize(size int) Option {
	return func(o *pipelineOptions) {
		o.batchSize = size
	}
}

// WithPoolSize sets the worker pool size for BuildIndexes. Default 4.
func WithPoolSize(size int) Option {
	return func(o *pipelineOptions) {
		o.poolSize = size
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *pipelineOptions) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// Open assembles a pipeline over the given root directory, creating the
// bronze/silver trees, index root, call cache, and lineage catalog
// underneath it.
func Open(rootDir string, opts ...Option) (*Pipeline, error) {
	options := &pipelineOptions{
		aiConfig:  ai.DefaultConfig(),
		alpha:     0.6,
		topK:      20,
		cacheMode: replay.ModeFetch,
		schedule:  normalize.DefaultSchedule(),
		batchSize: 32,
		poolSize:  4,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.alpha < 0 || options.alpha > 1 {
		return nil, fmt.Errorf("%w: got %g", retrieval.ErrInvalidAlpha, options.alpha)
	}
	if options.topK < 1 {
		return nil, fmt.Errorf("%w: got %d", retrieval.ErrInvalidK, options.topK)
	}

	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, err
	}

	bronze, err := partition.NewBronze(filepath.Join(rootDir, bronzeDir))
	if err != nil {
		return nil, err
	}
	silver, err := partition.NewSilver(filepath.Join(rootDir, silverDir))
	if err != nil {
		bronze.Close()
		return nil, err
	}

	lineageBackend, err := catalog.OpenBackend(filepath.Join(rootDir, catalogDir), false)
	if err != nil {
		silver.Close()
		bronze.Close()
		return nil, err
	}
	lineage, err := catalog.NewCatalog(lineageBackend)
	if err != nil {
		lineageBackend.Close()
		silver.Close()
		bronze.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			lineage.Close()
			lineageBackend.Close()
			silver.Close()
			bronze.Close()
			return nil, err
		}
	}

	cache, err := replay.NewCache(filepath.Join(rootDir, cacheDir), options.cacheMode,
		replay.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		lineage.Close()
		lineageBackend.Close()
		silver.Close()
		bronze.Close()
		return nil, err
	}
	embedder := replay.NewCachedEmbedder(provider.Embedder(), cache, provider.EmbeddingModelID())

	indexRoot := filepath.Join(rootDir, indexesDir)
	builder, err := index.NewBuilder(silver, embedder, provider.EmbeddingModelID(), indexRoot,
		index.WithBatchSize(options.batchSize),
		index.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		lineage.Close()
		lineageBackend.Close()
		silver.Close()
		bronze.Close()
		return nil, err
	}
	engine, err := retrieval.NewEngine(indexRoot, embedder,
		retrieval.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		lineage.Close()
		lineageBackend.Close()
		silver.Close()
		bronze.Close()
		return nil, err
	}

	pool, err := ants.NewPool(options.poolSize)
	if err != nil {
		provider.Close()
		lineage.Close()
		lineageBackend.Close()
		silver.Close()
		bronze.Close()
		return nil, err
	}

	return &Pipeline{
		root:           rootDir,
		bronze:         bronze,
		silver:         silver,
		lineage:        lineage,
		lineageBackend: lineageBackend,
		provider:       provider,
		cache:          cache,
		embedder:       embedder,
		builder:        builder,
		engine:         engine,
		pool:           pool,
		alpha:          options.alpha,
		topK:           options.topK,
		schedule:       options.schedule,
		logger:         options.logger,
	}, nil
}

// Close releases pipeline resources.
func (p *Pipeline) Close() error {
	p.pool.Release()

	if err := p.provider.Close(); err != nil {
		p.logger.Error("error closing model provider", "err", err)
	}
	if err := p.lineage.Close(); err != nil {
		p.logger.Error("error closing catalog", "err", err)
	}
	if err := p.lineageBackend.Close(); err != nil {
		p.logger.Error("error closing catalog backend", "err", err)
		return err
	}
	if err := p.silver.Close(); err != nil {
		p.logger.Error("error closing silver store", "err", err)
		return err
	}
	if err := p.bronze.Close(); err != nil {
		p.logger.Error("error closing bronze store", "err", err)
		return err
	}
	return nil
}

// Bronze exposes the raw evidence tier.
func (p *Pipeline) Bronze() storage.BronzeStore {
	return p.bronze
}

// Silver exposes the normalized evidence tier.
func (p *Pipeline) Silver() storage.SilverStore {
	return p.silver
}

// Catalog exposes the lineage catalog.
func (p *Pipeline) Catalog() *catalog.Catalog {
	return p.lineage
}

// IngestBatch validates and appends a batch of bronze records, then
// records the batch in the lineage catalog. The whole batch is rejected
// if any record is invalid.
func (p *Pipeline) IngestBatch(ctx context.Context, records []*core.EvidenceRecord, batchID string) error {
	if err := p.bronze.WriteBatch(ctx, records, batchID); err != nil {
		return err
	}

	partitions := make(map[core.PartitionKey]bool, len(records))
	snapshotID := ""
	for _, record := range records {
		partitions[record.Partition()] = true
		if snapshotID == "" {
			snapshotID = record.SnapshotID
		}
	}

	return p.lineage.RecordIngestion(ctx, &catalog.IngestionBatch{
		BatchID:    batchID,
		SnapshotID: snapshotID,
		Records:    len(records),
		Partitions: len(partitions),
		ReceivedAt: time.Now().UTC(),
	})
}

// Normalize rebuilds the silver tree from bronze with asOf as the
// pinned age reference, and records the run in the lineage catalog.
func (p *Pipeline) Normalize(ctx context.Context, asOf time.Time) (*normalize.Stats, error) {
	normalizer, err := normalize.NewNormalizer(p.bronze, p.silver,
		normalize.WithAsOf(asOf),
		normalize.WithSchedule(p.schedule),
		normalize.WithLogger(p.logger))
	if err != nil {
		return nil, err
	}

	stats, err := normalizer.Run(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.lineage.RecordNormalizeRun(ctx, &catalog.NormalizeRun{
		AsOf:          stats.AsOf,
		BronzeRecords: stats.BronzeRecords,
		SilverRecords: stats.SilverRecords,
		Duplicates:    stats.Duplicates,
		RanAt:         time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	return &stats, nil
}

// BuildIndex builds the retrieval index for one document and records
// the build in the lineage catalog.
func (p *Pipeline) BuildIndex(ctx context.Context, docID string) (*index.Manifest, error) {
	manifest, err := p.builder.Build(ctx, docID)
	if err != nil {
		return nil, err
	}

	if err := p.lineage.RecordIndexBuild(ctx, &catalog.IndexBuild{
		DocID:       manifest.DocID,
		ModelID:     manifest.ModelID,
		Dim:         manifest.Dim,
		Count:       manifest.Count,
		ChunkDigest: manifest.ChunkDigest,
		BuiltAt:     manifest.BuiltAt,
	}); err != nil {
		return nil, err
	}
	return manifest, nil
}

// BuildIndexes builds indexes for several documents on the worker pool.
// Documents are independent, so builds run concurrently up to the pool
// size. Returns the combined errors of all failed builds.
func (p *Pipeline) BuildIndexes(ctx context.Context, docIDs []string) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, docID := range docIDs {
		docID := docID
		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			if _, err := p.BuildIndex(ctx, docID); err != nil {
				p.logger.Error("index build failed", "docID", docID, "err", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("build %s: %w", docID, err))
				mu.Unlock()
			}
		}); err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("submit %s: %w", docID, err))
			mu.Unlock()
		}
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Query runs a hybrid retrieval query against a document's index using
// the configured top-K and fusion weight.
func (p *Pipeline) Query(ctx context.Context, docID, text string) ([]retrieval.Result, error) {
	return p.engine.Query(ctx, docID, text, p.topK, p.alpha)
}

// SelectEvidence retrieves the configured top-K for the query and picks
// up to n citation-worthy chunks for the theme under the page-diversity
// gate. The selection is parity-checked against the retrieved set before
// being returned.
func (p *Pipeline) SelectEvidence(ctx context.Context, theme, docID, text string, n int) (selector.Selection, error) {
	if !core.IsValidTheme(theme) {
		return selector.Selection{}, fmt.Errorf("%w: %q", core.ErrInvalidTheme, theme)
	}

	results, err := p.Query(ctx, docID, text)
	if err != nil {
		return selector.Selection{}, err
	}

	selection := selector.Select(theme, results, n)

	topK := make([]int, len(results))
	for i, result := range results {
		topK[i] = result.ChunkID
	}
	if err := selector.ValidateParity(theme, selection.ChunkIDs(), topK); err != nil {
		return selector.Selection{}, err
	}
	return selection, nil
}
