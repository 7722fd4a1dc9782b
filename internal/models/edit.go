package models

import (
	"fmt"

	"github.com/starford/itinera/internal/apperr"
)

// ActivityPatch is a partial activity update. Nil fields are left as they are.
type ActivityPatch struct {
	Name        *string      `json:"name,omitempty"`
	Description *string      `json:"description,omitempty"`
	Time        *string      `json:"time,omitempty"`
	Duration    *string      `json:"duration,omitempty"`
	Location    *string      `json:"location,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Cost        *float64     `json:"cost,omitempty"`
	Category    *Category    `json:"category,omitempty"`
}

// Apply merges p onto a and returns the result. a is not modified and the
// result shares no pointers with p.
func (p ActivityPatch) Apply(a Activity) Activity {
	out := a
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Time != nil {
		out.Time = *p.Time
	}
	if p.Duration != nil {
		out.Duration = *p.Duration
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.Coordinates != nil {
		out.Coordinates = &Coordinates{
			Lat: clonePtr(p.Coordinates.Lat),
			Lng: clonePtr(p.Coordinates.Lng),
		}
	}
	if p.Cost != nil {
		out.Cost = clonePtr(p.Cost)
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	return out
}

// Empty reports whether p would change nothing.
func (p ActivityPatch) Empty() bool {
	return p == ActivityPatch{}
}

// The edit operations below never modify the receiver. Each returns a new
// top-level document; only the touched day gets a fresh activity slice and
// every other day shares its slice with the input.

// UpdateActivity merges patch onto the activity at the given position.
func (it *Itinerary) UpdateActivity(dayIndex, activityIndex int, patch ActivityPatch) (*Itinerary, error) {
	return it.withDay(dayIndex, func(acts []Activity) ([]Activity, error) {
		if err := checkIndex("activity", activityIndex, len(acts)); err != nil {
			return nil, err
		}
		next := make([]Activity, len(acts))
		copy(next, acts)
		next[activityIndex] = patch.Apply(acts[activityIndex])
		return next, nil
	})
}

// RemoveActivity deletes the activity at the given position and returns it.
// Later activities of the same day shift down by one.
func (it *Itinerary) RemoveActivity(dayIndex, activityIndex int) (*Itinerary, Activity, error) {
	var removed Activity
	out, err := it.withDay(dayIndex, func(acts []Activity) ([]Activity, error) {
		if err := checkIndex("activity", activityIndex, len(acts)); err != nil {
			return nil, err
		}
		removed = acts[activityIndex]
		next := make([]Activity, 0, len(acts)-1)
		next = append(next, acts[:activityIndex]...)
		next = append(next, acts[activityIndex+1:]...)
		return next, nil
	})
	if err != nil {
		return nil, Activity{}, err
	}
	return out, removed, nil
}

// AddActivity appends a to the end of the day. An activity without an id,
// or with one already used in the document, gets a fresh id.
func (it *Itinerary) AddActivity(dayIndex int, a Activity) (*Itinerary, error) {
	if a.ID == "" {
		a.ID = NewID()
	} else if _, _, taken := it.Locate(a.ID); taken {
		a.ID = NewID()
	}
	a = a.Clone()
	return it.withDay(dayIndex, func(acts []Activity) ([]Activity, error) {
		next := make([]Activity, len(acts), len(acts)+1)
		copy(next, acts)
		return append(next, a), nil
	})
}

// ReorderActivities moves the activity at from so that it ends up at to.
// The removal happens first, so to indexes the list without the moved
// activity. Both indices must lie in [0, len).
func (it *Itinerary) ReorderActivities(dayIndex, from, to int) (*Itinerary, error) {
	return it.withDay(dayIndex, func(acts []Activity) ([]Activity, error) {
		if err := checkIndex("from", from, len(acts)); err != nil {
			return nil, err
		}
		if err := checkIndex("to", to, len(acts)); err != nil {
			return nil, err
		}
		moved := acts[from]
		next := make([]Activity, 0, len(acts))
		next = append(next, acts[:from]...)
		next = append(next, acts[from+1:]...)
		next = append(next, Activity{})
		copy(next[to+1:], next[to:])
		next[to] = moved
		return next, nil
	})
}

// Locate finds the position of the activity with the given id.
func (it *Itinerary) Locate(id string) (dayIndex, activityIndex int, ok bool) {
	if it == nil || id == "" {
		return 0, 0, false
	}
	for i, d := range it.Days {
		for j, a := range d.Activities {
			if a.ID == id {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// UpdateActivityByID merges patch onto the activity with the given id.
func (it *Itinerary) UpdateActivityByID(id string, patch ActivityPatch) (*Itinerary, error) {
	d, a, err := it.mustLocate(id)
	if err != nil {
		return nil, err
	}
	return it.UpdateActivity(d, a, patch)
}

// RemoveActivityByID deletes the activity with the given id.
func (it *Itinerary) RemoveActivityByID(id string) (*Itinerary, Activity, error) {
	d, a, err := it.mustLocate(id)
	if err != nil {
		return nil, Activity{}, err
	}
	return it.RemoveActivity(d, a)
}

// MoveActivity moves the activity with the given id to position to within
// its own day.
func (it *Itinerary) MoveActivity(id string, to int) (*Itinerary, error) {
	d, a, err := it.mustLocate(id)
	if err != nil {
		return nil, err
	}
	return it.ReorderActivities(d, a, to)
}

func (it *Itinerary) mustLocate(id string) (int, int, error) {
	if it == nil {
		return 0, 0, apperr.ErrNoItinerary
	}
	d, a, ok := it.Locate(id)
	if !ok {
		return 0, 0, fmt.Errorf("activity %q: %w", id, apperr.ErrNotFound)
	}
	return d, a, nil
}

// withDay copies the top-level document and the day slice, replacing the
// activities of one day with whatever fn builds. fn must not write into the
// slice it receives.
func (it *Itinerary) withDay(dayIndex int, fn func([]Activity) ([]Activity, error)) (*Itinerary, error) {
	if it == nil {
		return nil, apperr.ErrNoItinerary
	}
	if err := checkIndex("day", dayIndex, len(it.Days)); err != nil {
		return nil, err
	}
	acts, err := fn(it.Days[dayIndex].Activities)
	if err != nil {
		return nil, err
	}
	out := *it
	out.Days = make([]Day, len(it.Days))
	copy(out.Days, it.Days)
	out.Days[dayIndex].Activities = acts
	return &out, nil
}

func checkIndex(what string, i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%s index %d not in [0,%d): %w", what, i, n, apperr.ErrOutOfRange)
	}
	return nil
}
