package journal

import "errors"

var (
	// ErrKindRequired is returned when an entry has no kind.
	ErrKindRequired = errors.New("journal: entry kind is required")

	// ErrInvalidRetention is returned by Prune for a non-positive duration.
	ErrInvalidRetention = errors.New("journal: retention must be positive")
)
