package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidPayload is returned when a choice payload is malformed.
var ErrInvalidPayload = errors.New("invalid choice payload")

// ErrUnknownEvent is returned when an event kind is not recognised.
var ErrUnknownEvent = errors.New("unknown event kind")

// ErrIncompleteApplication is returned when a record reaches confirmation with fields missing.
var ErrIncompleteApplication = errors.New("application is incomplete")
