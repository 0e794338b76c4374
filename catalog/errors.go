package catalog

import "errors"

var (
	// ErrNotFound indicates no catalog entry exists for the key.
	ErrNotFound = errors.New("catalog entry not found")
)
