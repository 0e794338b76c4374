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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/veridian-systems/evidentia"
	"github.com/veridian-systems/evidentia/ai"
	"github.com/veridian-systems/evidentia/replay"
)

func main() {
	app := &cli.App{
		Name:  "evidentia",
		Usage: "Evidence normalization and hybrid retrieval for regulatory filings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "normalize",
				Usage:  "Rebuild the silver tier from bronze evidence",
				Action: normalizeCommand,
				Flags: append(pipelineFlags(),
					&cli.StringFlag{
						Name:  "as-of",
						Usage: "Pinned age reference (RFC 3339), defaults to now",
					},
				),
			},
			{
				Name:   "build-index",
				Usage:  "Build retrieval indexes for one or more documents",
				Action: buildIndexCommand,
				Flags: append(pipelineFlags(),
					&cli.StringSliceFlag{
						Name:     "doc",
						Aliases:  []string{"d"},
						Usage:    "Document id to index (repeatable)",
						Required: true,
					},
				),
			},
			{
				Name:      "query",
				Usage:     "Run a hybrid retrieval query against a document index",
				ArgsUsage: "<query text>",
				Action:    queryCommand,
				Flags: append(pipelineFlags(),
					&cli.StringFlag{
						Name:     "doc",
						Aliases:  []string{"d"},
						Usage:    "Document id to query",
						Required: true,
					},
				),
			},
			{
				Name:      "select-evidence",
				Usage:     "Select citation-worthy chunks for a theme",
				ArgsUsage: "<query text>",
				Action:    selectEvidenceCommand,
				Flags: append(pipelineFlags(),
					&cli.StringFlag{
						Name:     "doc",
						Aliases:  []string{"d"},
						Usage:    "Document id to query",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "theme",
						Usage:    "Theme code the evidence supports",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "n",
						Usage: "Number of chunks to select",
						Value: 3,
					},
				),
			},
			{
				Name:   "history",
				Usage:  "Show recorded normalizer runs and index builds",
				Action: historyCommand,
				Flags: append(pipelineFlags(),
					&cli.StringFlag{
						Name:    "doc",
						Aliases: []string{"d"},
						Usage:   "Limit index build history to one document",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// pipelineFlags are shared by every command that opens the pipeline.
func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "root",
			Aliases:  []string{"r"},
			Usage:    "Pipeline root directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "Model service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "generation-model",
			Usage: "Generation model name",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:  "cache-mode",
			Usage: "External-call cache mode (fetch or replay)",
			Value: "fetch",
		},
		&cli.Float64Flag{
			Name:  "alpha",
			Usage: "Lexical-weight fraction for fusion",
			Value: 0.6,
		},
		&cli.IntFlag{
			Name:  "k",
			Usage: "Top-K size for retrieval",
			Value: 20,
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Chunk texts per embedding call",
			Value: 32,
		},
		&cli.IntFlag{
			Name:  "pool-size",
			Usage: "Concurrent index builds",
			Value: 4,
		},
	}
}

// openPipeline assembles a pipeline from the shared flags.
func openPipeline(c *cli.Context) (*evidentia.Pipeline, error) {
	mode, err := replay.ParseMode(c.String("cache-mode"))
	if err != nil {
		return nil, err
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGenerationModel(c.String("generation-model")),
		ai.WithEmbedBatchSize(c.Int("batch-size")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	return evidentia.Open(c.String("root"),
		evidentia.WithAIConfig(aiConfig),
		evidentia.WithCacheMode(mode),
		evidentia.WithAlpha(c.Float64("alpha")),
		evidentia.WithTopK(c.Int("k")),
		evidentia.WithEmbedBatchSize(c.Int("batch-size")),
		evidentia.WithPoolSize(c.Int("pool-size")),
	)
}

func normalizeCommand(c *cli.Context) error {
	asOf := time.Now().UTC()
	if s := c.String("as-of"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid as-of %q: %w", s, err)
		}
		asOf = parsed.UTC()
	}

	p, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	stats, err := p.Normalize(context.Background(), asOf)
	if err != nil {
		return fmt.Errorf("normalize failed: %w", err)
	}

	fmt.Fprintf(os.Stdout, "bronze records: %d\n", stats.BronzeRecords)
	fmt.Fprintf(os.Stdout, "silver records: %d\n", stats.SilverRecords)
	fmt.Fprintf(os.Stdout, "duplicates dropped: %d\n", stats.Duplicates)
	fmt.Fprintf(os.Stdout, "as of: %s\n", stats.AsOf.Format(time.RFC3339))
	return nil
}

func buildIndexCommand(c *cli.Context) error {
	p, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	docIDs := c.StringSlice("doc")
	if err := p.BuildIndexes(context.Background(), docIDs); err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	for _, docID := range docIDs {
		build, err := p.Catalog().LatestIndexBuild(context.Background(), docID)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s: %d chunks, dim %d, model %s\n",
			build.DocID, build.Count, build.Dim, build.ModelID)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return fmt.Errorf("query text is required")
	}

	p, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	results, err := p.Query(context.Background(), c.String("doc"), text)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	for _, result := range results {
		fmt.Fprintf(os.Stdout, "%3d. chunk %d (page %d) fused=%.4f lex=%.4f sem=%.4f\n     %s\n",
			result.Rank, result.ChunkID, result.Chunk.Page,
			result.FusedScore, result.LexicalScore, result.SemanticScore,
			result.Chunk.Text)
	}
	return nil
}

func selectEvidenceCommand(c *cli.Context) error {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return fmt.Errorf("query text is required")
	}

	p, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	selection, err := p.SelectEvidence(context.Background(),
		c.String("theme"), c.String("doc"), text, c.Int("n"))
	if err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}

	for _, result := range selection.Selected {
		fmt.Fprintf(os.Stdout, "chunk %d (page %d, fused=%.4f): %s\n",
			result.ChunkID, result.Chunk.Page, result.FusedScore, result.Chunk.Text)
	}
	if selection.DiversityMet {
		fmt.Fprintf(os.Stdout, "page diversity: ok (%d distinct pages)\n", selection.DistinctPages)
	} else {
		fmt.Fprintf(os.Stdout, "page diversity: FAILED (%d distinct page)\n", selection.DistinctPages)
	}
	return nil
}

func historyCommand(c *cli.Context) error {
	p, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := context.Background()
	runs, err := p.Catalog().ListNormalizeRuns(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "normalizer runs: %d\n", len(runs))
	for _, run := range runs {
		fmt.Fprintf(os.Stdout, "  %s  bronze=%d silver=%d duplicates=%d\n",
			run.RanAt.Format(time.RFC3339), run.BronzeRecords, run.SilverRecords, run.Duplicates)
	}

	if docID := c.String("doc"); docID != "" {
		builds, err := p.Catalog().ListIndexBuilds(ctx, docID)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "index builds for %s: %d\n", docID, len(builds))
		for _, build := range builds {
			fmt.Fprintf(os.Stdout, "  %s  chunks=%d dim=%d model=%s\n",
				build.BuiltAt.Format(time.RFC3339), build.Count, build.Dim, build.ModelID)
		}
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
