package catalog

import "time"

// IngestionBatch records one accepted bronze write batch.
type IngestionBatch struct {
	BatchID    string
	SnapshotID string
	Records    int
	Partitions int
	ReceivedAt time.Time
}

// NormalizeRun records one normalizer run and its outcome.
type NormalizeRun struct {
	AsOf          time.Time
	BronzeRecords int
	SilverRecords int
	Duplicates    int
	RanAt         time.Time
}

// IndexBuild records one per-document index build, mirroring the fields
// of the index manifest so lineage survives an index rebuild.
type IndexBuild struct {
	DocID       string
	ModelID     string
	Dim         int
	Count       int
	ChunkDigest string
	BuiltAt     time.Time
}
