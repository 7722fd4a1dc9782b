// Package storage persists named slots of raw bytes, the saved itinerary
// and its timestamp among them.
package storage

import "context"

// Well-known slot names.
const (
	KeyItinerary = "savedItinerary"
	KeySavedAt   = "savedItineraryDate"
)

// Slots is a small key-value store. Get of a missing key returns an error
// wrapping apperr.ErrNotFound; Delete of a missing key is not an error.
type Slots interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Verifier is implemented by stores that keep a digest next to each slot.
// Checksum returns "" for a missing slot.
type Verifier interface {
	Checksum(ctx context.Context, key string) (string, error)
}

// Verify implementations at compile time.
var (
	_ Slots    = (*FS)(nil)
	_ Slots    = (*SQLite)(nil)
	_ Verifier = (*SQLite)(nil)
)
