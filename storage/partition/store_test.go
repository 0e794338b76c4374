package partition

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridian-systems/evidentia/core"
	"github.com/veridian-systems/evidentia/storage"
)

func testRecord(orgID string, year int, theme, docID, extract string) *core.EvidenceRecord {
	record := &core.EvidenceRecord{
		OrgID:               orgID,
		FiscalYear:          year,
		Theme:               theme,
		StageIndicator:      2,
		DocID:               docID,
		PageNo:              3,
		SpanStart:           10,
		SpanEnd:             10 + len(extract),
		ExtractText:         extract,
		Confidence:          0.8,
		EvidenceType:        "qualitative",
		ExtractionTimestamp: time.Now().UTC().Add(-time.Hour),
		SnapshotID:          "snap-test",
	}
	record.Finalize()
	return record
}

func TestBronze_WriteBatchAndRead(t *testing.T) {
	bronze, _, err := NewTempStores(t.TempDir())
	require.NoError(t, err)
	defer bronze.Close()

	ctx := context.Background()
	records := []*core.EvidenceRecord{
		testRecord("acme", 2023, "ghg_emissions", "doc-1", "scope 1 emissions fell by 12%"),
		testRecord("acme", 2023, "climate_risk", "doc-1", "flood exposure assessed for all sites"),
		testRecord("globex", 2022, "ghg_emissions", "doc-9", "no reduction target disclosed"),
	}

	require.NoError(t, bronze.WriteBatch(ctx, records, "batch-1"))

	t.Run("read all", func(t *testing.T) {
		got, err := bronze.Read(ctx, storage.Filter{})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("partition pruning by org", func(t *testing.T) {
		got, err := bronze.Read(ctx, storage.Filter{OrgID: "acme"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		for _, record := range got {
			assert.Equal(t, "acme", record.OrgID)
		}
	})

	t.Run("partition pruning by theme", func(t *testing.T) {
		got, err := bronze.Read(ctx, storage.Filter{Theme: "ghg_emissions"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("doc filter applies after pruning", func(t *testing.T) {
		got, err := bronze.Read(ctx, storage.Filter{DocID: "doc-9"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "globex", got[0].OrgID)
	})

	t.Run("zero matching partitions is empty, not an error", func(t *testing.T) {
		got, err := bronze.Read(ctx, storage.Filter{OrgID: "nonexistent"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("batch id stamped as ingestion id", func(t *testing.T) {
		got, err := bronze.Read(ctx, storage.Filter{OrgID: "acme"})
		require.NoError(t, err)
		for _, record := range got {
			assert.Equal(t, "batch-1", record.IngestionID)
		}
	})
}

func TestBronze_WriteBatch_RejectsWholeBatch(t *testing.T) {
	dir := t.TempDir()
	bronze, _, err := NewTempStores(dir)
	require.NoError(t, err)
	defer bronze.Close()

	ctx := context.Background()
	bad := testRecord("acme", 2023, "ghg_emissions", "doc-1", "valid extract")
	bad.Confidence = 1.5

	records := []*core.EvidenceRecord{
		testRecord("acme", 2023, "ghg_emissions", "doc-1", "another valid extract"),
		bad,
	}

	err = bronze.WriteBatch(ctx, records, "batch-bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrValidation)

	// The valid record must not have been written either.
	got, err := bronze.Read(ctx, storage.Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBronze_AppendOnly(t *testing.T) {
	dir := t.TempDir()
	bronze, _, err := NewTempStores(dir)
	require.NoError(t, err)
	defer bronze.Close()

	ctx := context.Background()
	require.NoError(t, bronze.WriteBatch(ctx,
		[]*core.EvidenceRecord{testRecord("acme", 2023, "assurance", "doc-1", "limited assurance obtained")}, "b1"))
	require.NoError(t, bronze.WriteBatch(ctx,
		[]*core.EvidenceRecord{testRecord("acme", 2023, "assurance", "doc-1", "reasonable assurance planned")}, "b2"))

	partDir := filepath.Join(dir, "bronze", "org_id=acme", "fiscal_year=2023", "theme=assurance")
	entries, err := os.ReadDir(partDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "each batch should append its own segment file")

	got, err := bronze.Read(ctx, storage.Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestBronze_Read_DeterministicOrder(t *testing.T) {
	bronze, _, err := NewTempStores(t.TempDir())
	require.NoError(t, err)
	defer bronze.Close()

	ctx := context.Background()
	records := []*core.EvidenceRecord{
		testRecord("zeta", 2023, "ghg_emissions", "doc-1", "extract a"),
		testRecord("acme", 2024, "biodiversity", "doc-2", "extract b"),
		testRecord("acme", 2023, "climate_risk", "doc-3", "extract c"),
	}
	require.NoError(t, bronze.WriteBatch(ctx, records, "batch-1"))

	first, err := bronze.Read(ctx, storage.Filter{})
	require.NoError(t, err)
	second, err := bronze.Read(ctx, storage.Filter{})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Sorted by org, then fiscal year.
	require.Len(t, first, 3)
	assert.Equal(t, "acme", first[0].OrgID)
	assert.Equal(t, 2023, first[0].FiscalYear)
	assert.Equal(t, "acme", first[1].OrgID)
	assert.Equal(t, 2024, first[1].FiscalYear)
	assert.Equal(t, "zeta", first[2].OrgID)
}

func TestBronze_Read_TruncatedSegment(t *testing.T) {
	dir := t.TempDir()
	bronze, _, err := NewTempStores(dir)
	require.NoError(t, err)
	defer bronze.Close()

	ctx := context.Background()
	require.NoError(t, bronze.WriteBatch(ctx,
		[]*core.EvidenceRecord{testRecord("acme", 2023, "ghg_emissions", "doc-1", "a perfectly fine extract")}, "b1"))

	partDir := filepath.Join(dir, "bronze", "org_id=acme", "fiscal_year=2023", "theme=ghg_emissions")
	entries, err := os.ReadDir(partDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	path := filepath.Join(partDir, entries[0].Name())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.WriteFile(path, data[:len(data)/2], 0644))

	_, err = bronze.Read(ctx, storage.Filter{})
	require.Error(t, err)
	assert.True(t,
		errors.Is(err, storage.ErrTruncatedData) || errors.Is(err, storage.ErrSerializationFailed),
		"corrupt segment must surface a schema error, got %v", err)
}

func TestSilver_ReplaceIsWholesaleAndDeterministic(t *testing.T) {
	dir := t.TempDir()
	_, silver, err := NewTempStores(dir)
	require.NoError(t, err)
	defer silver.Close()

	ctx := context.Background()
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	toSilver := func(r *core.EvidenceRecord) *core.SilverEvidenceRecord {
		return &core.SilverEvidenceRecord{
			EvidenceRecord:     *r,
			IsMostRecent:       true,
			FreshnessPenalty:   0.1,
			AdjustedConfidence: 0.7,
		}
	}

	first := []*core.SilverEvidenceRecord{
		toSilver(testRecord("acme", 2023, "ghg_emissions", "doc-1", "old silver record")),
	}
	require.NoError(t, silver.Replace(ctx, first, asOf))

	second := []*core.SilverEvidenceRecord{
		toSilver(testRecord("globex", 2022, "assurance", "doc-9", "new silver record")),
	}
	require.NoError(t, silver.Replace(ctx, second, asOf))

	got, err := silver.Read(ctx, storage.Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1, "replace must drop the previous tree")
	assert.Equal(t, "globex", got[0].OrgID)

	// Re-replacing with identical input and asOf reproduces identical bytes.
	require.NoError(t, silver.Replace(ctx, second, asOf))
	path := filepath.Join(dir, "silver", "org_id=globex", "fiscal_year=2022", "theme=assurance")
	entries, err := os.ReadDir(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data1, err := os.ReadFile(filepath.Join(path, entries[0].Name()))
	require.NoError(t, err)

	require.NoError(t, silver.Replace(ctx, second, asOf))
	entries2, err := os.ReadDir(path)
	require.NoError(t, err)
	require.Len(t, entries2, 1)
	assert.Equal(t, entries[0].Name(), entries2[0].Name())

	data2, err := os.ReadFile(filepath.Join(path, entries2[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, data1, data2)
}

func TestSilver_Read_Empty(t *testing.T) {
	_, silver, err := NewTempStores(t.TempDir())
	require.NoError(t, err)
	defer silver.Close()

	got, err := silver.Read(context.Background(), storage.Filter{OrgID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStores_Closed(t *testing.T) {
	bronze, silver, err := NewTempStores(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, bronze.Close())
	require.NoError(t, silver.Close())

	ctx := context.Background()
	_, err = bronze.Read(ctx, storage.Filter{})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	err = silver.Replace(ctx, nil, time.Now())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
