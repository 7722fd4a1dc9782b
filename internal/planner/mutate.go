package planner

import (
	"context"
	"log/slog"

	"github.com/starford/itinera/internal/apperr"
	"github.com/starford/itinera/internal/checksum"
	"github.com/starford/itinera/internal/models"
)

// Mutation op names, also used as metric labels.
const (
	OpUpdate  = "update"
	OpRemove  = "remove"
	OpAdd     = "add"
	OpReorder = "reorder"
	OpMove    = "move"
)

// mutate applies fn to the current document under the lock. A non-empty
// ifMatch must equal the current revision.
func (s *Service) mutate(ctx context.Context, op, ifMatch string, fn func(*models.Itinerary) (*models.Itinerary, error)) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return Document{}, apperr.ErrNoItinerary
	}
	if ifMatch != "" && ifMatch != s.revision {
		s.mu.Unlock()
		return Document{}, apperr.ErrConflict
	}
	out, err := fn(s.doc)
	if err != nil {
		s.mu.Unlock()
		return Document{}, err
	}
	s.doc = out
	s.revision = checksum.Of(out)
	s.sel.Reconcile(out)
	doc := Document{Itinerary: out, Revision: s.revision}
	s.mu.Unlock()

	s.metrics.Mutation(op)
	s.emit(EventUpdated, doc.Revision)
	return doc, nil
}

// UpdateActivity merges patch into the activity at the given position.
func (s *Service) UpdateActivity(ctx context.Context, dayIndex, activityIndex int, patch models.ActivityPatch, ifMatch string) (Document, error) {
	doc, err := s.mutate(ctx, OpUpdate, ifMatch, func(it *models.Itinerary) (*models.Itinerary, error) {
		return it.UpdateActivity(dayIndex, activityIndex, patch)
	})
	if err == nil {
		s.mirrorUpdate(ctx, doc.Itinerary.ID, dayIndex, activityIndex, patch)
	}
	return doc, err
}

func (s *Service) mirrorUpdate(ctx context.Context, id string, dayIndex, activityIndex int, patch models.ActivityPatch) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.UpdateRemoteActivity(ctx, id, dayIndex, activityIndex, patch); err != nil {
		s.logger.Warn("planner: remote activity update failed",
			slog.String("itinerary", id), slog.String("error", err.Error()))
	}
}

// RemoveActivity deletes the activity at the given position and returns it.
func (s *Service) RemoveActivity(ctx context.Context, dayIndex, activityIndex int, ifMatch string) (Document, models.Activity, error) {
	var removed models.Activity
	doc, err := s.mutate(ctx, OpRemove, ifMatch, func(it *models.Itinerary) (*models.Itinerary, error) {
		out, a, err := it.RemoveActivity(dayIndex, activityIndex)
		removed = a
		return out, err
	})
	return doc, removed, err
}

// AddActivity appends a to the given day.
func (s *Service) AddActivity(ctx context.Context, dayIndex int, a models.Activity, ifMatch string) (Document, error) {
	return s.mutate(ctx, OpAdd, ifMatch, func(it *models.Itinerary) (*models.Itinerary, error) {
		return it.AddActivity(dayIndex, a)
	})
}

// ReorderActivities moves an activity within one day.
func (s *Service) ReorderActivities(ctx context.Context, dayIndex, from, to int, ifMatch string) (Document, error) {
	return s.mutate(ctx, OpReorder, ifMatch, func(it *models.Itinerary) (*models.Itinerary, error) {
		return it.ReorderActivities(dayIndex, from, to)
	})
}

func (s *Service) UpdateActivityByID(ctx context.Context, id string, patch models.ActivityPatch, ifMatch string) (Document, error) {
	doc, err := s.mutate(ctx, OpUpdate, ifMatch, func(it *models.Itinerary) (*models.Itinerary, error) {
		return it.UpdateActivityByID(id, patch)
	})
	if err == nil {
		if di, ai, ok := doc.Itinerary.Locate(id); ok {
			s.mirrorUpdate(ctx, doc.Itinerary.ID, di, ai, patch)
		}
	}
	return doc, err
}

func (s *Service) RemoveActivityByID(ctx context.Context, id, ifMatch string) (Document, models.Activity, error) {
	var removed models.Activity
	doc, err := s.mutate(ctx, OpRemove, ifMatch, func(it *models.Itinerary) (*models.Itinerary, error) {
		out, a, err := it.RemoveActivityByID(id)
		removed = a
		return out, err
	})
	return doc, removed, err
}

// MoveActivity moves the activity with the given id to position to within
// its own day.
func (s *Service) MoveActivity(ctx context.Context, id string, to int, ifMatch string) (Document, error) {
	return s.mutate(ctx, OpMove, ifMatch, func(it *models.Itinerary) (*models.Itinerary, error) {
		return it.MoveActivity(id, to)
	})
}
