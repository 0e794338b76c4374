package evidentia

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-systems/evidentia/ai/mock"
	"github.com/veridian-systems/evidentia/catalog"
	"github.com/veridian-systems/evidentia/core"
	"github.com/veridian-systems/evidentia/replay"
	"github.com/veridian-systems/evidentia/storage"
)

const e2eDocID = "acme-ar-2023"

func e2eRecord(t *testing.T, page int, theme, extract string, confidence float64) *core.EvidenceRecord {
	t.Helper()
	record := &core.EvidenceRecord{
		OrgID:               "acme",
		FiscalYear:          2023,
		Theme:               theme,
		StageIndicator:      2,
		DocID:               e2eDocID,
		PageNo:              page,
		SpanStart:           10,
		SpanEnd:             10 + len(extract),
		ExtractText:         extract,
		Confidence:          confidence,
		EvidenceType:        "narrative",
		ExtractionTimestamp: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		SnapshotID:          "snap-1",
	}
	record.Finalize()
	return record
}

func seedRecords(t *testing.T) []*core.EvidenceRecord {
	t.Helper()
	records := []*core.EvidenceRecord{
		e2eRecord(t, 4, "climate_risk", "The board assessed physical climate risk across all sites", 0.9),
		e2eRecord(t, 4, "climate_risk", "Transition risk is reviewed under two warming scenarios", 0.85),
		e2eRecord(t, 9, "climate_risk", "Flood exposure at coastal plants was remodelled this year", 0.8),
		e2eRecord(t, 12, "ghg_emissions", "Scope 1 emissions fell 12% against the 2020 baseline", 0.9),
		e2eRecord(t, 15, "water_stewardship", "Water withdrawal in stressed basins was cut by a fifth", 0.75),
	}
	// A duplicate quote with lower confidence; normalize must drop it.
	dup := e2eRecord(t, 4, "climate_risk", "The board assessed physical climate risk across all sites", 0.6)
	dup.SnapshotID = "snap-0"
	return append(records, dup)
}

func TestPipeline_EndToEnd(t *testing.T) {
	root := t.TempDir()
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	p, err := Open(root,
		WithProvider(mock.NewMockProvider()),
		WithTopK(5),
		WithAlpha(0.6),
	)
	require.NoError(t, err)
	defer p.Close()

	ctx := context.Background()
	require.NoError(t, p.IngestBatch(ctx, seedRecords(t), "batch-1"))

	batch, err := p.Catalog().GetIngestion(ctx, "batch-1")
	require.NoError(t, err)
	assert.Equal(t, 6, batch.Records)
	assert.Equal(t, 3, batch.Partitions)
	assert.Equal(t, "snap-1", batch.SnapshotID)

	stats, err := p.Normalize(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.BronzeRecords)
	assert.Equal(t, 5, stats.SilverRecords)
	assert.Equal(t, 1, stats.Duplicates)

	silver, err := p.Silver().Read(ctx, storage.Filter{Theme: "climate_risk"})
	require.NoError(t, err)
	require.Len(t, silver, 3)
	for _, record := range silver {
		assert.True(t, record.IsMostRecent)
		assert.Zero(t, record.FreshnessPenalty, "records are under 24 months old")
	}

	manifest, err := p.BuildIndex(ctx, e2eDocID)
	require.NoError(t, err)
	assert.Equal(t, 5, manifest.Count)

	build, err := p.Catalog().LatestIndexBuild(ctx, e2eDocID)
	require.NoError(t, err)
	assert.Equal(t, manifest.ChunkDigest, build.ChunkDigest)

	results, err := p.Query(ctx, e2eDocID, "physical climate risk")
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, 1, results[0].Rank)

	selection, err := p.SelectEvidence(ctx, "climate_risk", e2eDocID, "physical climate risk", 3)
	require.NoError(t, err)
	require.Len(t, selection.Selected, 3)
	assert.True(t, selection.DiversityMet, "evidence spans multiple source pages")
}

func TestPipeline_BuildIndexesConcurrently(t *testing.T) {
	root := t.TempDir()
	p, err := Open(root, WithProvider(mock.NewMockProvider()), WithPoolSize(2))
	require.NoError(t, err)
	defer p.Close()

	ctx := context.Background()
	var docIDs []string
	var records []*core.EvidenceRecord
	for i := 0; i < 4; i++ {
		docID := fmt.Sprintf("acme-doc-%d", i)
		docIDs = append(docIDs, docID)
		record := e2eRecord(t, 3, "ghg_emissions", fmt.Sprintf("unique emissions disclosure %d", i), 0.8)
		record.DocID, record.EvidenceID = docID, 0
		record.Finalize()
		records = append(records, record)
	}
	require.NoError(t, p.IngestBatch(ctx, records, "batch-1"))
	_, err = p.Normalize(ctx, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, p.BuildIndexes(ctx, docIDs))
	for _, docID := range docIDs {
		build, err := p.Catalog().LatestIndexBuild(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, 1, build.Count)
	}

	err = p.BuildIndexes(ctx, []string{"missing-doc"})
	assert.Error(t, err)
}

func TestPipeline_ReplayModeServesRecordedRun(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Record a full run in fetch mode.
	p, err := Open(root, WithProvider(mock.NewMockProvider()), WithTopK(3))
	require.NoError(t, err)
	require.NoError(t, p.IngestBatch(ctx, seedRecords(t), "batch-1"))
	_, err = p.Normalize(ctx, asOf)
	require.NoError(t, err)
	_, err = p.BuildIndex(ctx, e2eDocID)
	require.NoError(t, err)
	recorded, err := p.Query(ctx, e2eDocID, "physical climate risk")
	require.NoError(t, err)
	require.NoError(t, p.Close())

	// Replay over the same root. The provider's embedder must never be
	// reached for recorded inputs, and unseen queries must fail closed.
	provider := mock.NewMockProvider()
	provider.MockEmbedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		t.Fatal("live embedding call in replay mode")
		return nil, nil
	}

	rp, err := Open(root,
		WithProvider(provider),
		WithCacheMode(replay.ModeReplay),
		WithTopK(3),
	)
	require.NoError(t, err)
	defer rp.Close()

	replayed, err := rp.Query(ctx, e2eDocID, "physical climate risk")
	require.NoError(t, err)
	assert.Equal(t, recorded, replayed, "replayed ranking must be bit-for-bit identical")

	_, err = rp.Query(ctx, e2eDocID, "a query nobody recorded")
	assert.ErrorIs(t, err, replay.ErrReplayMiss)
}

func TestPipeline_SelectEvidenceRejectsUnknownTheme(t *testing.T) {
	p, err := Open(t.TempDir(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer p.Close()

	_, err = p.SelectEvidence(context.Background(), "not_a_theme", e2eDocID, "q", 3)
	assert.ErrorIs(t, err, core.ErrInvalidTheme)
}

func TestPipeline_IngestRejectsInvalidBatchAtomically(t *testing.T) {
	p, err := Open(t.TempDir(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer p.Close()
	ctx := context.Background()

	good := e2eRecord(t, 3, "ghg_emissions", "a valid extract", 0.8)
	bad := e2eRecord(t, 3, "ghg_emissions", "another extract", 1.5) // confidence out of range

	err = p.IngestBatch(ctx, []*core.EvidenceRecord{good, bad}, "batch-1")
	require.ErrorIs(t, err, core.ErrValidation)

	// Nothing may have been written, including the catalog entry.
	records, err := p.Bronze().Read(ctx, storage.Filter{})
	require.NoError(t, err)
	assert.Empty(t, records)
	_, err = p.Catalog().GetIngestion(ctx, "batch-1")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
