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

package selector

import (
	"log/slog"

	"github.com/veridian-systems/evidentia/retrieval"
)

// minDistinctPages is the page-diversity gate threshold.
const minDistinctPages = 2

// Selection is the evidence set chosen for one theme, with the outcome
// of the page-diversity gate. A failed gate is a reportable condition
// for downstream scoring, not an error.
type Selection struct {
	Theme         string
	Selected      []retrieval.Result
	DistinctPages int
	DiversityMet  bool
}

// ChunkIDs returns the selected chunk ids in selection order.
func (s Selection) ChunkIDs() []int {
	ids := make([]int, len(s.Selected))
	for i, result := range s.Selected {
		ids[i] = result.ChunkID
	}
	return ids
}

// Select picks up to n chunks for a theme from ranked retrieval results.
// The naive choice is the top n by rank. If those sit on fewer than two
// distinct pages, one bounded substitution pass swaps the lowest-ranked
// pick for the best remaining candidate from an unseen page. When no
// off-page candidate exists the gate failure is reported in the
// selection. The selected set is always a subset of results, so parity
// holds by construction.
func Select(theme string, results []retrieval.Result, n int) Selection {
	if n > len(results) {
		n = len(results)
	}
	selection := Selection{Theme: theme}
	if n <= 0 {
		return selection
	}

	selected := make([]retrieval.Result, n)
	copy(selected, results[:n])

	if pages := distinctPages(selected); pages >= minDistinctPages || len(results) == n {
		selection.Selected = selected
		selection.DistinctPages = pages
		selection.DiversityMet = pages >= minDistinctPages
		if !selection.DiversityMet {
			logGateFailure(theme, selected)
		}
		return selection
	}

	// All picks share one page. Substitute the lowest-ranked pick with
	// the best candidate from another page, if any.
	seenPage := selected[0].Chunk.Page
	for _, candidate := range results[n:] {
		if candidate.Chunk.Page != seenPage {
			selected[n-1] = candidate
			break
		}
	}

	selection.Selected = selected
	selection.DistinctPages = distinctPages(selected)
	selection.DiversityMet = selection.DistinctPages >= minDistinctPages
	if !selection.DiversityMet {
		logGateFailure(theme, selected)
	}
	return selection
}

// ValidateParity checks that every selected chunk id is a member of the
// top-K id set. Returns a *ParityViolationError naming the offending ids
// on failure, nil otherwise.
func ValidateParity(theme string, selectedIDs, topKIDs []int) error {
	topK := make(map[int]bool, len(topKIDs))
	for _, id := range topKIDs {
		topK[id] = true
	}

	var missing []int
	for _, id := range selectedIDs {
		if !topK[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &ParityViolationError{Theme: theme, Missing: missing}
	}
	return nil
}

func distinctPages(results []retrieval.Result) int {
	pages := make(map[int]bool, len(results))
	for _, result := range results {
		pages[result.Chunk.Page] = true
	}
	return len(pages)
}

func logGateFailure(theme string, selected []retrieval.Result) {
	slog.Default().Warn("page-diversity gate failed",
		"component", "selector",
		"theme", theme,
		"selected", len(selected),
		"distinctPages", distinctPages(selected))
}
