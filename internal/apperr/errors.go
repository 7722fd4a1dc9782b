// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrNoItinerary   = errors.New("no itinerary")
	ErrOutOfRange    = errors.New("index out of range")
	ErrInvalidPrompt = errors.New("prompt is required")
	ErrSuperseded    = errors.New("superseded by a newer generation")
)
