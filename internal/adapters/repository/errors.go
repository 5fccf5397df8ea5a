package repository

import "errors"

// Sentinel kinds for file store errors.
var (
	ErrMissingInput  = errors.New("required input missing")
	ErrDecode        = errors.New("decode input")
	ErrInvalidRecord = errors.New("invalid input record")
	ErrWrite         = errors.New("write artifact")
)
