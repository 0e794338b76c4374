package selector

import (
	"fmt"
	"sort"
)

// ParityViolationError reports selected chunk ids that are not members
// of the retrieved top-K set.
type ParityViolationError struct {
	Theme   string
	Missing []int
}

func (e *ParityViolationError) Error() string {
	sort.Ints(e.Missing)
	if e.Theme == "" {
		return fmt.Sprintf("parity violation: chunk ids %v not in top-K set", e.Missing)
	}
	return fmt.Sprintf("parity violation for theme %s: chunk ids %v not in top-K set", e.Theme, e.Missing)
}
