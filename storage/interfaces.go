package storage

import (
	"context"
	"time"

	"github.com/veridian-systems/evidentia/core"
)

// Filter selects evidence records by partition key and, optionally, by
// document. Zero values mean "all": an empty OrgID matches every org, a zero
// FiscalYear every year, and so on. OrgID, FiscalYear and Theme prune
// partitions before any file is opened; DocID is applied to decoded records.
type Filter struct {
	OrgID      string
	FiscalYear int
	Theme      string
	DocID      string
}

// Matches reports whether a partition key passes the pruning part of the
// filter.
func (f Filter) Matches(key core.PartitionKey) bool {
	if f.OrgID != "" && f.OrgID != key.OrgID {
		return false
	}
	if f.FiscalYear != 0 && f.FiscalYear != key.FiscalYear {
		return false
	}
	if f.Theme != "" && f.Theme != key.Theme {
		return false
	}
	return true
}

// BronzeStore is the append-only raw evidence tier. Whole batches are
// rejected before any bytes are written if a single record fails validation;
// accepted batches append new segment files and never rewrite existing ones.
type BronzeStore interface {
	// WriteBatch validates and appends a batch of evidence records.
	// The batch id is stamped onto each record's IngestionID.
	WriteBatch(ctx context.Context, records []*core.EvidenceRecord, batchID string) error

	// Read returns all records matching the filter, in a deterministic
	// order. A filter matching zero partitions yields an empty slice and
	// a nil error.
	Read(ctx context.Context, filter Filter) ([]*core.EvidenceRecord, error)

	// Close releases resources held by the store.
	Close() error
}

// SilverStore is the deduplicated, freshness-aged tier. It is always fully
// derivable from bronze: Replace swaps the whole partition tree in one call.
type SilverStore interface {
	// Replace rebuilds the silver partition tree from the given records.
	// Segment file names derive from asOf so identical inputs reproduce
	// identical trees byte for byte.
	Replace(ctx context.Context, records []*core.SilverEvidenceRecord, asOf time.Time) error

	// Read returns all silver records matching the filter, in a
	// deterministic order. Zero matching partitions yield an empty slice
	// and a nil error.
	Read(ctx context.Context, filter Filter) ([]*core.SilverEvidenceRecord, error)

	// Close releases resources held by the store.
	Close() error
}
