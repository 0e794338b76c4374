package catalog

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written mus-format serializers for catalog records, in the same
// field-ordered versionless encoding as the evidence records. Timestamps
// are Unix microseconds.

// IngestionBatchMUS serializes IngestionBatch values.
var IngestionBatchMUS = ingestionBatchMUS{}

type ingestionBatchMUS struct{}

func (s ingestionBatchMUS) Marshal(v IngestionBatch, bs []byte) (n int) {
	n = ord.String.Marshal(v.BatchID, bs)
	n += ord.String.Marshal(v.SnapshotID, bs[n:])
	n += varint.Int.Marshal(v.Records, bs[n:])
	n += varint.Int.Marshal(v.Partitions, bs[n:])
	n += varint.Int64.Marshal(v.ReceivedAt.UnixMicro(), bs[n:])
	return n
}

func (s ingestionBatchMUS) Unmarshal(bs []byte) (v IngestionBatch, n int, err error) {
	var n1 int
	if v.BatchID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.SnapshotID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Records, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Partitions, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	var micros int64
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.ReceivedAt = time.UnixMicro(micros).UTC()
	return
}

func (s ingestionBatchMUS) Size(v IngestionBatch) (size int) {
	size = ord.String.Size(v.BatchID)
	size += ord.String.Size(v.SnapshotID)
	size += varint.Int.Size(v.Records)
	size += varint.Int.Size(v.Partitions)
	size += varint.Int64.Size(v.ReceivedAt.UnixMicro())
	return size
}

// NormalizeRunMUS serializes NormalizeRun values.
var NormalizeRunMUS = normalizeRunMUS{}

type normalizeRunMUS struct{}

func (s normalizeRunMUS) Marshal(v NormalizeRun, bs []byte) (n int) {
	n = varint.Int64.Marshal(v.AsOf.UnixMicro(), bs)
	n += varint.Int.Marshal(v.BronzeRecords, bs[n:])
	n += varint.Int.Marshal(v.SilverRecords, bs[n:])
	n += varint.Int.Marshal(v.Duplicates, bs[n:])
	n += varint.Int64.Marshal(v.RanAt.UnixMicro(), bs[n:])
	return n
}

func (s normalizeRunMUS) Unmarshal(bs []byte) (v NormalizeRun, n int, err error) {
	var n1 int
	var micros int64
	if micros, n, err = varint.Int64.Unmarshal(bs); err != nil {
		return
	}
	v.AsOf = time.UnixMicro(micros).UTC()
	if v.BronzeRecords, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.SilverRecords, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Duplicates, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.RanAt = time.UnixMicro(micros).UTC()
	return
}

func (s normalizeRunMUS) Size(v NormalizeRun) (size int) {
	size = varint.Int64.Size(v.AsOf.UnixMicro())
	size += varint.Int.Size(v.BronzeRecords)
	size += varint.Int.Size(v.SilverRecords)
	size += varint.Int.Size(v.Duplicates)
	size += varint.Int64.Size(v.RanAt.UnixMicro())
	return size
}

// IndexBuildMUS serializes IndexBuild values.
var IndexBuildMUS = indexBuildMUS{}

type indexBuildMUS struct{}

func (s indexBuildMUS) Marshal(v IndexBuild, bs []byte) (n int) {
	n = ord.String.Marshal(v.DocID, bs)
	n += ord.String.Marshal(v.ModelID, bs[n:])
	n += varint.Int.Marshal(v.Dim, bs[n:])
	n += varint.Int.Marshal(v.Count, bs[n:])
	n += ord.String.Marshal(v.ChunkDigest, bs[n:])
	n += varint.Int64.Marshal(v.BuiltAt.UnixMicro(), bs[n:])
	return n
}

func (s indexBuildMUS) Unmarshal(bs []byte) (v IndexBuild, n int, err error) {
	var n1 int
	if v.DocID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.ModelID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Dim, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Count, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ChunkDigest, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	var micros int64
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.BuiltAt = time.UnixMicro(micros).UTC()
	return
}

func (s indexBuildMUS) Size(v IndexBuild) (size int) {
	size = ord.String.Size(v.DocID)
	size += ord.String.Size(v.ModelID)
	size += varint.Int.Size(v.Dim)
	size += varint.Int.Size(v.Count)
	size += ord.String.Size(v.ChunkDigest)
	size += varint.Int64.Size(v.BuiltAt.UnixMicro())
	return size
}
