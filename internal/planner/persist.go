package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/itinera/internal/apperr"
	"github.com/starford/itinera/internal/checksum"
	"github.com/starford/itinera/internal/metrics"
	"github.com/starford/itinera/internal/models"
	"github.com/starford/itinera/internal/storage"
)

// SavedAtLayout is ISO-8601 in UTC with millisecond precision.
const SavedAtLayout = "2006-01-02T15:04:05.000Z"

// Save writes the current document and the save time to the slot store.
func (s *Service) Save(ctx context.Context) (time.Time, error) {
	s.mu.Lock()
	it, rev := s.doc, s.revision
	s.mu.Unlock()
	if it == nil {
		return time.Time{}, apperr.ErrNoItinerary
	}

	data, err := json.Marshal(it)
	if err != nil {
		s.metrics.Persistence("save", metrics.OutcomeFailure)
		return time.Time{}, fmt.Errorf("planner: save: encode: %w", err)
	}
	at := s.now().UTC().Truncate(time.Millisecond)

	prev, prevErr := s.slots.Get(ctx, storage.KeyItinerary)
	if err := s.slots.Set(ctx, storage.KeyItinerary, data); err != nil {
		s.metrics.Persistence("save", metrics.OutcomeFailure)
		return time.Time{}, fmt.Errorf("planner: save: %w", err)
	}
	if err := s.slots.Set(ctx, storage.KeySavedAt, []byte(at.Format(SavedAtLayout))); err != nil {
		s.metrics.Persistence("save", metrics.OutcomeFailure)
		s.restoreSaved(ctx, prev, prevErr)
		return time.Time{}, fmt.Errorf("planner: save timestamp: %w", err)
	}

	s.metrics.Persistence("save", metrics.OutcomeSuccess)
	s.logger.Info("planner: itinerary saved", slog.String("revision", rev), slog.Int("bytes", len(data)))
	s.emit(EventSaved, rev)

	if s.mirror != nil {
		if err := s.mirror.SaveRemote(ctx, it); err != nil {
			s.logger.Warn("planner: remote save failed", slog.String("error", err.Error()))
		}
	}
	return at, nil
}

// restoreSaved puts back the itinerary slot as it was before a save whose
// timestamp write failed, so the document and its timestamp stay paired.
func (s *Service) restoreSaved(ctx context.Context, prev []byte, prevErr error) {
	var err error
	switch {
	case prevErr == nil:
		err = s.slots.Set(ctx, storage.KeyItinerary, prev)
	case errors.Is(prevErr, apperr.ErrNotFound):
		err = s.slots.Delete(ctx, storage.KeyItinerary)
	default:
		err = prevErr
	}
	if err != nil {
		s.logger.Error("planner: saved itinerary left without matching timestamp", slog.String("error", err.Error()))
	}
}

// Load installs the saved document. It reports false, leaving the current
// document untouched, when nothing usable is saved; read and decode
// failures are logged, never returned.
func (s *Service) Load(ctx context.Context) bool {
	data, err := s.slots.Get(ctx, storage.KeyItinerary)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.metrics.Persistence("load", metrics.OutcomeMissing)
			s.logger.Debug("planner: nothing saved")
		} else {
			s.metrics.Persistence("load", metrics.OutcomeFailure)
			s.logger.Warn("planner: read saved itinerary", slog.String("error", err.Error()))
		}
		return false
	}
	if v, ok := s.slots.(storage.Verifier); ok {
		want, err := v.Checksum(ctx, storage.KeyItinerary)
		switch {
		case err != nil:
			s.logger.Warn("planner: read saved checksum", slog.String("error", err.Error()))
		case want != "" && want != checksum.Sum(data):
			s.metrics.Persistence("load", metrics.OutcomeCorrupt)
			s.logger.Warn("planner: saved itinerary fails checksum", slog.String("want", want))
			return false
		}
	}

	var it *models.Itinerary
	if err := json.Unmarshal(data, &it); err != nil || it == nil {
		msg := "empty document"
		if err != nil {
			msg = err.Error()
		}
		s.metrics.Persistence("load", metrics.OutcomeCorrupt)
		s.logger.Warn("planner: failed to load saved itinerary", slog.String("error", msg))
		return false
	}
	it.Normalize()

	s.mu.Lock()
	s.installLocked(it)
	rev := s.revision
	s.mu.Unlock()

	s.metrics.Persistence("load", metrics.OutcomeSuccess)
	s.logger.Info("planner: itinerary loaded", slog.String("destination", it.Destination))
	s.emit(EventLoaded, rev)
	return true
}

// SavedAt returns the time of the last save, if a readable one exists.
func (s *Service) SavedAt(ctx context.Context) (time.Time, bool) {
	data, err := s.slots.Get(ctx, storage.KeySavedAt)
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
