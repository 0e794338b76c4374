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


// Package storage defines the two evidence tiers and their serialization.
//
// The bronze tier is append-only: each accepted batch adds new segment
// files under org_id=<id>/fiscal_year=<y>/theme=<code>/ partition
// directories and never rewrites an existing file. The silver tier is a
// pure function of bronze and is replaced wholesale by the normalizer.
//
// # Constructor Return Type Pattern
//
// Public constructors return the interfaces defined here
// (BronzeStore, SilverStore) rather than concrete types:
//
//	bronze, err := partition.NewBronze(dir)  // returns storage.BronzeStore
//
// This keeps callers decoupled from the file layout and lets tests swap in
// alternative implementations.
//
// # Single-writer contract
//
// Each partition tree has exactly one producer at a time: one ingestion
// batch per bronze write, one normalizer run per silver rebuild. The layer
// provides no locking; concurrent writers to the same tree are out of
// contract.
package storage
