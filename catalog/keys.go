package catalog

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Key prefixes for the catalog record types
const (
	ingestionPrefix  = "ingbat"
	normalizePrefix  = "nrmrun"
	indexBuildPrefix = "idxbld"
)

// makeIngestionKey generates a key for an ingestion batch by id.
func makeIngestionKey(batchID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", ingestionPrefix, batchID))
}

// makeNormalizeRunKey generates a time-ordered key for a normalizer run.
// Format: prefix:timestamp, BigEndian so lexicographic sort is
// chronological.
func makeNormalizeRunKey(ranAt time.Time) []byte {
	prefix := normalizePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(ranAt.UnixMicro()))
	return buf
}

// makeIndexBuildKey generates a composite key for an index build.
// Format: prefix:docID:timestamp, time-ordered within a document.
func makeIndexBuildKey(docID string, builtAt time.Time) []byte {
	prefix := fmt.Sprintf("%s:%s:", indexBuildPrefix, docID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(builtAt.UnixMicro()))
	return buf
}

// makeIndexBuildScanPrefix generates the iteration prefix for one
// document's build history.
func makeIndexBuildScanPrefix(docID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", indexBuildPrefix, docID))
}
