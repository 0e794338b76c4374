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

// Package index builds and loads per-document retrieval indexes.
//
// An index is a directory holding three artifacts: a chunk table
// (mus-encoded, length-prefixed), a flat binary vector file with a
// [count, dim] header, and a JSON manifest recording the embedding model,
// vector dimension, chunk count, build time, and a digest over all chunk
// hashes for lineage verification.
//
// Builds are wholesale: the new artifacts are staged in a sibling
// directory and swapped in with a rename, so readers never observe a
// half-written index. Indexes for distinct documents are fully
// independent and may be built concurrently.
package index
