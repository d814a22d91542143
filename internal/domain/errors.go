package domain

import "errors"

// ErrMetadataUnavailable and related errors describe metadata, layout, and update failures.
var (
	ErrInvalidName         = errors.New("invalid name")
	ErrInvalidOption       = errors.New("invalid option")
	ErrInvalidColumnKey    = errors.New("invalid column key")
	ErrMetadataUnavailable = errors.New("metadata unavailable")
	ErrAmbiguousOption     = errors.New("ambiguous option")
	ErrUpdateRejected      = errors.New("update rejected")
	ErrInvalidDropTarget   = errors.New("invalid drop target")
)

// UpdateError carries the user-facing message returned by a rejected record update.
type UpdateError struct {
	Message string
	Err     error
}

// Error returns the provider message when one is available.
func (e *UpdateError) Error() string {
	if e == nil {
		return ErrUpdateRejected.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return ErrUpdateRejected.Error() + ": " + e.Err.Error()
	}
	return ErrUpdateRejected.Error()
}

// Unwrap exposes both the rejection sentinel and the underlying cause.
func (e *UpdateError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{ErrUpdateRejected}
	}
	return []error{ErrUpdateRejected, e.Err}
}
