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

// Package replay provides a content-addressed cache for external model
// calls. Every embedding and generation request goes through the cache,
// keyed by a sha256 digest over the call type, the canonical parameters,
// and the input payload.
//
// The cache runs in one of two modes. In fetch mode a miss triggers the
// live call and the result is persisted before being returned. In replay
// mode a miss is a fatal error: replay exists to guarantee that a run
// performs no hidden network calls, so falling back to a live call would
// defeat its purpose. A hit returns the stored output unchanged in either
// mode.
//
// Entries are write-once, one file per entry, accompanied by an
// append-only JSONL ledger that records every store for audit.
package replay
