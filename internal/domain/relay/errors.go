package relay

import "errors"

// Sentinel kinds for relay reconstruction.
var (
	ErrUnknownType = errors.New("unknown relay type")
	ErrLegCount    = errors.New("leg count does not fit relay type")
)
