package ledger

import "errors"

// Sentinel kinds for ledger build failures. Every one is fatal to a run.
var (
	ErrNoSeasons         = errors.New("no seasons supplied")
	ErrInvalidSeason     = errors.New("invalid season token")
	ErrInvalidEntry      = errors.New("invalid time entry")
	ErrSeasonsOutOfOrder = errors.New("seasons out of order")
	ErrDerivedCategory   = errors.New("open category is derived and cannot be set")
)
