package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvidenceRecordMUS_RoundTrip(t *testing.T) {
	record := EvidenceRecord{
		EvidenceID:          IDFromContent("roundtrip"),
		OrgID:               "acme",
		FiscalYear:          2023,
		Theme:               "climate_risk",
		StageIndicator:      3,
		DocID:               "acme-tcfd-2023",
		PageNo:              7,
		SpanStart:           120,
		SpanEnd:             210,
		ExtractText:         "… physical risk assessment covers all operating sites …",
		ContentHash:         HashText("… physical risk assessment covers all operating sites …"),
		Confidence:          0.72,
		EvidenceType:        "qualitative",
		ExtractionTimestamp: time.Date(2024, 2, 10, 8, 30, 0, 0, time.UTC),
		SnapshotID:          "snap-2024-02",
		IngestionID:         "batch-042",
	}

	bs := make([]byte, EvidenceRecordMUS.Size(record))
	n := EvidenceRecordMUS.Marshal(record, bs)
	require.Equal(t, len(bs), n)

	decoded, n, err := EvidenceRecordMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, record, decoded)
}

func TestSilverEvidenceRecordMUS_RoundTrip(t *testing.T) {
	silver := SilverEvidenceRecord{
		EvidenceRecord: EvidenceRecord{
			EvidenceID:          42,
			OrgID:               "acme",
			FiscalYear:          2022,
			Theme:               "water_stewardship",
			StageIndicator:      1,
			DocID:               "acme-sr-2022",
			PageNo:              33,
			SpanStart:           5,
			SpanEnd:             55,
			ExtractText:         "water withdrawal intensity targets",
			ContentHash:         HashText("water withdrawal intensity targets"),
			Confidence:          0.9,
			EvidenceType:        "target",
			ExtractionTimestamp: time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
			SnapshotID:          "snap-2023-06",
			IngestionID:         "batch-007",
		},
		IsMostRecent:       true,
		FreshnessPenalty:   0.1,
		AdjustedConfidence: 0.8,
	}

	bs := make([]byte, SilverEvidenceRecordMUS.Size(silver))
	n := SilverEvidenceRecordMUS.Marshal(silver, bs)
	require.Equal(t, len(bs), n)

	decoded, n, err := SilverEvidenceRecordMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, silver, decoded)
}

func TestChunkMUS_RoundTrip(t *testing.T) {
	chunk := Chunk{
		ChunkID: 3,
		DocID:   "acme-ar-2023",
		Page:    14,
		Text:    "… we reduced scope 1 emissions by 12% …",
		TextSHA: HashText("… we reduced scope 1 emissions by 12% …"),
	}

	bs := make([]byte, ChunkMUS.Size(chunk))
	n := ChunkMUS.Marshal(chunk, bs)
	require.Equal(t, len(bs), n)

	decoded, n, err := ChunkMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, chunk, decoded)
}

func TestEvidenceRecordMUS_Truncated(t *testing.T) {
	record := EvidenceRecord{
		EvidenceID:          7,
		OrgID:               "acme",
		FiscalYear:          2023,
		Theme:               "assurance",
		DocID:               "d",
		PageNo:              1,
		SpanEnd:             1,
		ExtractText:         "limited assurance over scope 1 and 2",
		ExtractionTimestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	bs := make([]byte, EvidenceRecordMUS.Size(record))
	EvidenceRecordMUS.Marshal(record, bs)

	_, _, err := EvidenceRecordMUS.Unmarshal(bs[:len(bs)/2])
	assert.Error(t, err)
}
