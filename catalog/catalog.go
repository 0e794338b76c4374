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

package catalog

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Catalog is the lineage repository over a badger backend.
type Catalog struct {
	backend *Backend
}

// NewCatalog creates a catalog over an opened backend. The backend's
// lifecycle stays with the caller; Close here does not close it.
func NewCatalog(backend *Backend) (*Catalog, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend must not be nil")
	}
	return &Catalog{backend: backend}, nil
}

// Close releases catalog resources.
func (c *Catalog) Close() error {
	return nil
}

// RecordIngestion stores the outcome of one accepted bronze batch.
func (c *Catalog) RecordIngestion(ctx context.Context, batch *IngestionBatch) error {
	value := make([]byte, IngestionBatchMUS.Size(*batch))
	IngestionBatchMUS.Marshal(*batch, value)

	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeIngestionKey(batch.BatchID), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetIngestion looks up an ingestion batch by id.
func (c *Catalog) GetIngestion(ctx context.Context, batchID string) (*IngestionBatch, error) {
	var batch IngestionBatch
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIngestionKey(batchID))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: ingestion batch %s", ErrNotFound, batchID)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			batch, _, err = IngestionBatchMUS.Unmarshal(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// RecordNormalizeRun stores the outcome of one normalizer run.
func (c *Catalog) RecordNormalizeRun(ctx context.Context, run *NormalizeRun) error {
	value := make([]byte, NormalizeRunMUS.Size(*run))
	NormalizeRunMUS.Marshal(*run, value)

	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeNormalizeRunKey(run.RanAt), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListNormalizeRuns returns all recorded runs in chronological order.
func (c *Catalog) ListNormalizeRuns(ctx context.Context) ([]*NormalizeRun, error) {
	var runs []*NormalizeRun
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(normalizePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				run, _, err := NormalizeRunMUS.Unmarshal(val)
				if err != nil {
					return err
				}
				runs = append(runs, &run)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// RecordIndexBuild stores the outcome of one index build.
func (c *Catalog) RecordIndexBuild(ctx context.Context, build *IndexBuild) error {
	value := make([]byte, IndexBuildMUS.Size(*build))
	IndexBuildMUS.Marshal(*build, value)

	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeIndexBuildKey(build.DocID, build.BuiltAt), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListIndexBuilds returns a document's build history, oldest first.
func (c *Catalog) ListIndexBuilds(ctx context.Context, docID string) ([]*IndexBuild, error) {
	var builds []*IndexBuild
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeIndexBuildScanPrefix(docID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				build, _, err := IndexBuildMUS.Unmarshal(val)
				if err != nil {
					return err
				}
				builds = append(builds, &build)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return builds, nil
}

// LatestIndexBuild returns the most recent build for a document, or
// ErrNotFound if the document was never indexed.
func (c *Catalog) LatestIndexBuild(ctx context.Context, docID string) (*IndexBuild, error) {
	builds, err := c.ListIndexBuilds(ctx, docID)
	if err != nil {
		return nil, err
	}
	if len(builds) == 0 {
		return nil, fmt.Errorf("%w: index build for %s", ErrNotFound, docID)
	}
	return builds[len(builds)-1], nil
}
