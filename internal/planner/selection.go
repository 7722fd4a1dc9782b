package planner

import (
	"context"
	"fmt"

	"github.com/starford/itinera/internal/apperr"
	"github.com/starford/itinera/internal/models"
	"github.com/starford/itinera/internal/selection"
	"github.com/starford/itinera/internal/views"
)

func selectionReset() selection.State { return selection.State{} }

// Selection returns a copy of the selection state.
func (s *Service) Selection() selection.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Clone()
}

// updateSelection runs fn on the selection and notifies on success.
func (s *Service) updateSelection(ctx context.Context, fn func(it *models.Itinerary, sel *selection.State) error) (selection.State, error) {
	if err := ctx.Err(); err != nil {
		return selection.State{}, err
	}
	s.mu.Lock()
	if err := fn(s.doc, &s.sel); err != nil {
		s.mu.Unlock()
		return selection.State{}, err
	}
	out, rev := s.sel.Clone(), s.revision
	s.mu.Unlock()
	s.emit(EventSelection, rev)
	return out, nil
}

// SelectActivity highlights the activity with the given id and expands its
// day, as a marker click on the map does.
func (s *Service) SelectActivity(ctx context.Context, id string) (selection.State, error) {
	return s.updateSelection(ctx, func(it *models.Itinerary, sel *selection.State) error {
		if it == nil {
			return apperr.ErrNoItinerary
		}
		di, ai, ok := it.Locate(id)
		if !ok {
			return fmt.Errorf("activity %s: %w", id, apperr.ErrNotFound)
		}
		sel.SelectActivity(it.Days[di].Activities[ai])
		sel.Expand(it.Days[di].DayNumber)
		return nil
	})
}

func (s *Service) ClearActivitySelection(ctx context.Context) (selection.State, error) {
	return s.updateSelection(ctx, func(_ *models.Itinerary, sel *selection.State) error {
		sel.ClearActivity()
		return nil
	})
}

// SelectDay filters the list and map to day n; n == 0 or the current day
// shows all days again.
func (s *Service) SelectDay(ctx context.Context, n int) (selection.State, error) {
	return s.updateSelection(ctx, func(it *models.Itinerary, sel *selection.State) error {
		if it == nil {
			return apperr.ErrNoItinerary
		}
		if n != selection.AllDays {
			if _, ok := it.DayByNumber(n); !ok {
				return fmt.Errorf("day %d: %w", n, apperr.ErrNotFound)
			}
		}
		sel.SelectDay(n)
		return nil
	})
}

// ToggleDay expands or collapses day n in the list.
func (s *Service) ToggleDay(ctx context.Context, n int) (selection.State, error) {
	return s.updateSelection(ctx, func(it *models.Itinerary, sel *selection.State) error {
		if it == nil {
			return apperr.ErrNoItinerary
		}
		if _, ok := it.DayByNumber(n); !ok {
			return fmt.Errorf("day %d: %w", n, apperr.ErrNotFound)
		}
		sel.ToggleDay(n)
		return nil
	})
}

// ExpandAllDays expands every day of the document in the list.
func (s *Service) ExpandAllDays(ctx context.Context) (selection.State, error) {
	return s.updateSelection(ctx, func(it *models.Itinerary, sel *selection.State) error {
		if it == nil {
			return apperr.ErrNoItinerary
		}
		sel.ExpandAll(it)
		return nil
	})
}

// CollapseAllDays collapses every day in the list.
func (s *Service) CollapseAllDays(ctx context.Context) (selection.State, error) {
	return s.updateSelection(ctx, func(it *models.Itinerary, sel *selection.State) error {
		if it == nil {
			return apperr.ErrNoItinerary
		}
		sel.CollapseAll()
		return nil
	})
}

// VisibleDays returns the days passing the current day filter.
func (s *Service) VisibleDays(ctx context.Context) ([]models.Day, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.VisibleDays(s.doc), nil
}

// Summary computes the aggregates of the current document.
func (s *Service) Summary(ctx context.Context) (views.Summary, error) {
	it, err := s.requireDoc(ctx)
	if err != nil {
		return views.Summary{}, err
	}
	return views.Summarize(it), nil
}

// MapView projects the document for the map. A nil day uses the selected
// day filter so list and map stay in step.
func (s *Service) MapView(ctx context.Context, day *int) (views.MapView, error) {
	it, err := s.requireDoc(ctx)
	if err != nil {
		return views.MapView{}, err
	}
	d := s.Selection().SelectedDay
	if day != nil {
		d = *day
	}
	return views.BuildMapView(it, d), nil
}
