package sentinel

import "errors"

// Store-level errors. Stores return these (optionally wrapped) and services
// translate them into domain errors exactly once.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
