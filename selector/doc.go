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

// Package selector picks citation-worthy chunks from ranked retrieval
// results and validates them against the parity invariant: every cited
// chunk id must be a member of the retrieved top-K set.
//
// Selection also enforces a page-diversity gate. Evidence for a theme
// should span at least two distinct source pages; when the naive top
// candidates sit on one page, a bounded second pass substitutes in the
// best candidate from an unseen page. If no such candidate exists the
// failed gate is reported in the selection, not raised, since downstream
// scoring may still want the partial result with a flagged warning.
package selector
