package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound       = errors.New("not found")
	ErrWriteInFlight  = errors.New("write in flight")
	ErrNoActiveDrag   = errors.New("no active drag")
	ErrNotSelectable  = errors.New("attribute not selectable")
	ErrInvalidRequest = errors.New("invalid request")
)
