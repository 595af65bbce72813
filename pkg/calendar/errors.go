package calendar

import "errors"

// ErrValidation is returned when a draft fails input rules (empty title, malformed time...).
// The store is left unchanged.
var ErrValidation = errors.New("validation error")

// ErrNotFound is returned when an operation targets an event id the store does not hold.
// Delete never returns it.
var ErrNotFound = errors.New("event not found")
