package retrieval

import "errors"

var (
	// ErrEmptyQuery indicates a query with no text.
	ErrEmptyQuery = errors.New("query text must not be empty")

	// ErrInvalidK indicates a non-positive top-K size.
	ErrInvalidK = errors.New("k must be >= 1")

	// ErrInvalidAlpha indicates a fusion weight outside [0,1].
	ErrInvalidAlpha = errors.New("alpha must be in [0,1]")
)
