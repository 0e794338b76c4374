package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written mus-format serializers for the domain records. The encoding
// is field-ordered and versionless; segment files carry their own framing.
// Timestamps are encoded as Unix microseconds.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (s idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

// EvidenceRecordMUS serializes EvidenceRecord values.
var EvidenceRecordMUS = evidenceRecordMUS{}

type evidenceRecordMUS struct{}

func (s evidenceRecordMUS) Marshal(v EvidenceRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.EvidenceID, bs)
	n += ord.String.Marshal(v.OrgID, bs[n:])
	n += varint.Int.Marshal(v.FiscalYear, bs[n:])
	n += ord.String.Marshal(v.Theme, bs[n:])
	n += varint.Int.Marshal(v.StageIndicator, bs[n:])
	n += ord.String.Marshal(v.DocID, bs[n:])
	n += varint.Int.Marshal(v.PageNo, bs[n:])
	n += varint.Int.Marshal(v.SpanStart, bs[n:])
	n += varint.Int.Marshal(v.SpanEnd, bs[n:])
	n += ord.String.Marshal(v.ExtractText, bs[n:])
	n += ord.String.Marshal(v.ContentHash, bs[n:])
	n += varint.Float64.Marshal(v.Confidence, bs[n:])
	n += ord.String.Marshal(v.EvidenceType, bs[n:])
	n += varint.Int64.Marshal(v.ExtractionTimestamp.UnixMicro(), bs[n:])
	n += ord.String.Marshal(v.SnapshotID, bs[n:])
	n += ord.String.Marshal(v.IngestionID, bs[n:])
	return n
}

func (s evidenceRecordMUS) Unmarshal(bs []byte) (v EvidenceRecord, n int, err error) {
	var n1 int
	if v.EvidenceID, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.OrgID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.FiscalYear, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Theme, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.StageIndicator, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.DocID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.PageNo, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.SpanStart, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.SpanEnd, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ExtractText, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ContentHash, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Confidence, n1, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.EvidenceType, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	var micros int64
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.ExtractionTimestamp = time.UnixMicro(micros).UTC()
	if v.SnapshotID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.IngestionID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (s evidenceRecordMUS) Size(v EvidenceRecord) (size int) {
	size = IDMUS.Size(v.EvidenceID)
	size += ord.String.Size(v.OrgID)
	size += varint.Int.Size(v.FiscalYear)
	size += ord.String.Size(v.Theme)
	size += varint.Int.Size(v.StageIndicator)
	size += ord.String.Size(v.DocID)
	size += varint.Int.Size(v.PageNo)
	size += varint.Int.Size(v.SpanStart)
	size += varint.Int.Size(v.SpanEnd)
	size += ord.String.Size(v.ExtractText)
	size += ord.String.Size(v.ContentHash)
	size += varint.Float64.Size(v.Confidence)
	size += ord.String.Size(v.EvidenceType)
	size += varint.Int64.Size(v.ExtractionTimestamp.UnixMicro())
	size += ord.String.Size(v.SnapshotID)
	size += ord.String.Size(v.IngestionID)
	return size
}

// SilverEvidenceRecordMUS serializes SilverEvidenceRecord values.
var SilverEvidenceRecordMUS = silverEvidenceRecordMUS{}

type silverEvidenceRecordMUS struct{}

func (s silverEvidenceRecordMUS) Marshal(v SilverEvidenceRecord, bs []byte) (n int) {
	n = EvidenceRecordMUS.Marshal(v.EvidenceRecord, bs)
	n += ord.Bool.Marshal(v.IsMostRecent, bs[n:])
	n += varint.Float64.Marshal(v.FreshnessPenalty, bs[n:])
	n += varint.Float64.Marshal(v.AdjustedConfidence, bs[n:])
	return n
}

func (s silverEvidenceRecordMUS) Unmarshal(bs []byte) (v SilverEvidenceRecord, n int, err error) {
	var n1 int
	if v.EvidenceRecord, n, err = EvidenceRecordMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.IsMostRecent, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.FreshnessPenalty, n1, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.AdjustedConfidence, n1, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (s silverEvidenceRecordMUS) Size(v SilverEvidenceRecord) (size int) {
	size = EvidenceRecordMUS.Size(v.EvidenceRecord)
	size += ord.Bool.Size(v.IsMostRecent)
	size += varint.Float64.Size(v.FreshnessPenalty)
	size += varint.Float64.Size(v.AdjustedConfidence)
	return size
}

// ChunkMUS serializes Chunk values for the per-document chunk table.
var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (s chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = varint.Int.Marshal(v.ChunkID, bs)
	n += ord.String.Marshal(v.DocID, bs[n:])
	n += varint.Int.Marshal(v.Page, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += ord.String.Marshal(v.TextSHA, bs[n:])
	return n
}

func (s chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var n1 int
	if v.ChunkID, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	if v.DocID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Page, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.TextSHA, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (s chunkMUS) Size(v Chunk) (size int) {
	size = varint.Int.Size(v.ChunkID)
	size += ord.String.Size(v.DocID)
	size += varint.Int.Size(v.Page)
	size += ord.String.Size(v.Text)
	size += ord.String.Size(v.TextSHA)
	return size
}
