package alias

import "errors"

// Sentinel kinds for alias table errors.
var (
	ErrReadAliases  = errors.New("read alias table")
	ErrParseAliases = errors.New("parse alias table")
)
