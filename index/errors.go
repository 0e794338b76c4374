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

package index

import (
	"errors"
	"fmt"
)

var (
	// ErrNoChunks indicates a build found no silver evidence for the
	// document. Building an empty index is always a mistake upstream.
	ErrNoChunks = errors.New("no chunks for document")

	// ErrNoIndex indicates no index directory exists for the document.
	// The caller must build one first.
	ErrNoIndex = errors.New("index not found")

	// ErrEmbeddingCountMismatch indicates the embedding service returned
	// a different number of vectors than texts sent.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")

	// ErrIndexCorrupt indicates index artifacts that disagree with each
	// other or could not be decoded.
	ErrIndexCorrupt = errors.New("corrupt index")
)

// DimensionMismatchError reports embedding dimension drift. It is always
// fatal: vectors of different dimensions are not comparable and silently
// coercing them would poison every similarity score downstream.
type DimensionMismatchError struct {
	DocID string
	Want  int
	Got   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch for doc %s: want %d, got %d", e.DocID, e.Want, e.Got)
}
