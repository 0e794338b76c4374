package partition

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/veridian-systems/evidentia/core"
	"github.com/veridian-systems/evidentia/storage"
)

// Bronze is the append-only raw evidence store over a partition tree.
type Bronze struct {
	root   string
	logger *slog.Logger
	closed bool
}

var _ storage.BronzeStore = (*Bronze)(nil)

// NewBronze opens (creating if needed) a bronze store rooted at dir.
//
// Returns storage.BronzeStore interface to enforce abstraction.
func NewBronze(dir string) (storage.BronzeStore, error) {
	return newBronze(dir)
}

func newBronze(dir string) (*Bronze, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Bronze{
		root:   dir,
		logger: slog.Default().With("component", "bronze-store"),
	}, nil
}

// Close marks the store closed. There are no open handles to release;
// segment files are opened per operation.
func (b *Bronze) Close() error {
	b.closed = true
	return nil
}

// WriteBatch validates the whole batch, then appends one new segment file
// per touched partition. Validation failures reject the batch before any
// file is created.
func (b *Bronze) WriteBatch(ctx context.Context, records []*core.EvidenceRecord, batchID string) error {
	if b.closed {
		return storage.ErrStorageClosed
	}
	if len(records) == 0 {
		return nil
	}

	// Fail fast: no bytes reach disk unless every record is valid.
	for i, record := range records {
		if record != nil {
			if record.IngestionID == "" {
				record.IngestionID = batchID
			}
			record.Finalize()
		}
		if err := core.ValidateEvidenceRecord(record); err != nil {
			return fmt.Errorf("batch %s record %d: %w", batchID, i, err)
		}
	}

	groups := make(map[core.PartitionKey][]*core.EvidenceRecord)
	for _, record := range records {
		key := record.Partition()
		groups[key] = append(groups[key], record)
	}

	keys := make([]core.PartitionKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	micros := time.Now().UTC().UnixMicro()
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := partitionDir(b.root, key)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}

		group := groups[key]
		sort.Slice(group, func(i, j int) bool { return group[i].EvidenceID < group[j].EvidenceID })

		payloads := make([][]byte, len(group))
		for i, record := range group {
			payloads[i] = storage.MarshalEvidenceRecord(record)
		}

		path, err := nextSegmentPath(dir, micros)
		if err != nil {
			return err
		}
		if err := writeSegment(path, payloads); err != nil {
			return fmt.Errorf("partition %s: %w", key, err)
		}

		b.logger.Debug("appended bronze segment", "partition", key.String(), "records", len(group), "batch", batchID)
	}

	b.logger.Info("bronze batch written", "batch", batchID, "records", len(records), "partitions", len(keys))
	return nil
}

// Read returns all bronze records passing the filter in a deterministic
// order. Zero matching partitions yield an empty result.
func (b *Bronze) Read(ctx context.Context, filter storage.Filter) ([]*core.EvidenceRecord, error) {
	if b.closed {
		return nil, storage.ErrStorageClosed
	}

	keys, err := listPartitions(b.root, filter)
	if err != nil {
		return nil, err
	}

	var records []*core.EvidenceRecord
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		segments, err := listSegments(partitionDir(b.root, key))
		if err != nil {
			return nil, err
		}
		for _, segment := range segments {
			err := readSegment(segment, func(payload []byte) error {
				record, err := storage.UnmarshalEvidenceRecord(payload)
				if err != nil {
					return err
				}
				if filter.DocID != "" && filter.DocID != record.DocID {
					return nil
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}

	sortEvidence(records)
	return records, nil
}

// Silver is the deduplicated, freshness-aged store. The normalizer replaces
// its partition tree wholesale on every run.
type Silver struct {
	root   string
	logger *slog.Logger
	closed bool
}

var _ storage.SilverStore = (*Silver)(nil)

// NewSilver opens (creating if needed) a silver store rooted at dir.
//
// Returns storage.SilverStore interface to enforce abstraction.
func NewSilver(dir string) (storage.SilverStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Silver{
		root:   dir,
		logger: slog.Default().With("component", "silver-store"),
	}, nil
}

// Close marks the store closed.
func (s *Silver) Close() error {
	s.closed = true
	return nil
}

// Replace rebuilds the silver tree from the given records. The tree is
// staged next to root and swapped in with a rename, so readers never see a
// half-written tree. Segment names and record order derive only from the
// records and asOf, keeping rebuilds byte-identical for identical input.
func (s *Silver) Replace(ctx context.Context, records []*core.SilverEvidenceRecord, asOf time.Time) error {
	if s.closed {
		return storage.ErrStorageClosed
	}

	stage := s.root + ".staging"
	if err := os.RemoveAll(stage); err != nil {
		return err
	}
	if err := os.MkdirAll(stage, 0755); err != nil {
		return err
	}

	groups := make(map[core.PartitionKey][]*core.SilverEvidenceRecord)
	for _, record := range records {
		key := record.Partition()
		groups[key] = append(groups[key], record)
	}

	keys := make([]core.PartitionKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	micros := asOf.UTC().UnixMicro()
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := partitionDir(stage, key)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}

		group := groups[key]
		sort.Slice(group, func(i, j int) bool { return group[i].EvidenceID < group[j].EvidenceID })

		payloads := make([][]byte, len(group))
		for i, record := range group {
			payloads[i] = storage.MarshalSilverRecord(record)
		}

		if err := writeSegment(fmt.Sprintf("%s/%s", dir, segmentName(micros)), payloads); err != nil {
			return fmt.Errorf("partition %s: %w", key, err)
		}
	}

	if err := os.RemoveAll(s.root); err != nil {
		return err
	}
	if err := os.Rename(stage, s.root); err != nil {
		return err
	}

	s.logger.Info("silver tree replaced", "records", len(records), "partitions", len(keys))
	return nil
}

// Read returns all silver records passing the filter in a deterministic
// order.
func (s *Silver) Read(ctx context.Context, filter storage.Filter) ([]*core.SilverEvidenceRecord, error) {
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	keys, err := listPartitions(s.root, filter)
	if err != nil {
		return nil, err
	}

	var records []*core.SilverEvidenceRecord
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		segments, err := listSegments(partitionDir(s.root, key))
		if err != nil {
			return nil, err
		}
		for _, segment := range segments {
			err := readSegment(segment, func(payload []byte) error {
				record, err := storage.UnmarshalSilverRecord(payload)
				if err != nil {
					return err
				}
				if filter.DocID != "" && filter.DocID != record.DocID {
					return nil
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.OrgID != b.OrgID {
			return a.OrgID < b.OrgID
		}
		if a.FiscalYear != b.FiscalYear {
			return a.FiscalYear < b.FiscalYear
		}
		if a.Theme != b.Theme {
			return a.Theme < b.Theme
		}
		return a.EvidenceID < b.EvidenceID
	})
	return records, nil
}

// nextSegmentPath finds an unused part file path, bumping the timestamp on
// the rare collision with an earlier batch in the same microsecond.
func nextSegmentPath(dir string, micros int64) (string, error) {
	for i := 0; i < 1000; i++ {
		path := fmt.Sprintf("%s/%s", dir, segmentName(micros+int64(i)))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		} else if err != nil && !os.IsExist(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", storage.ErrSegmentExists, dir)
}

func sortEvidence(records []*core.EvidenceRecord) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.OrgID != b.OrgID {
			return a.OrgID < b.OrgID
		}
		if a.FiscalYear != b.FiscalYear {
			return a.FiscalYear < b.FiscalYear
		}
		if a.Theme != b.Theme {
			return a.Theme < b.Theme
		}
		if a.EvidenceID != b.EvidenceID {
			return a.EvidenceID < b.EvidenceID
		}
		return a.ExtractionTimestamp.Before(b.ExtractionTimestamp)
	})
}
