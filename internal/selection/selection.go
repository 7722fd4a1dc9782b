// Package selection holds the list/map coordination state: which activity
// is highlighted, which day filters both views and which days are expanded
// in the list.
package selection

import (
	"slices"

	"github.com/starford/itinera/internal/models"
)

// AllDays is the SelectedDay value meaning "no day filter".
const AllDays = 0

// State is a value type; copy it with Clone before handing it out.
type State struct {
	SelectedActivityID string      `json:"selectedActivityId,omitempty"`
	SelectedKey        *models.Key `json:"selectedKey,omitempty"`
	SelectedDay        int         `json:"selectedDay"`
	Expanded           []int       `json:"expanded"`
}

// SelectActivity highlights a. The id is used when present, the legacy
// (name, time) key otherwise.
func (s *State) SelectActivity(a models.Activity) {
	s.SelectedActivityID = a.ID
	s.SelectedKey = nil
	if a.ID == "" {
		k := a.Key()
		s.SelectedKey = &k
	}
}

// ClearActivity removes the highlight.
func (s *State) ClearActivity() {
	s.SelectedActivityID = ""
	s.SelectedKey = nil
}

// HasActivity reports whether an activity is highlighted.
func (s State) HasActivity() bool {
	return s.SelectedActivityID != "" || s.SelectedKey != nil
}

// Matches reports whether a is the highlighted activity.
func (s State) Matches(a models.Activity) bool {
	if s.SelectedActivityID != "" {
		return a.ID == s.SelectedActivityID
	}
	if s.SelectedKey != nil {
		return a.Key() == *s.SelectedKey
	}
	return false
}

// SelectDay filters both views to day n. Selecting the current day again,
// or n <= 0, goes back to all days.
func (s *State) SelectDay(n int) {
	if n <= 0 || n == s.SelectedDay {
		s.SelectedDay = AllDays
		return
	}
	s.SelectedDay = n
}

// ToggleDay flips the expanded flag of day n and returns the new value.
func (s *State) ToggleDay(n int) bool {
	if i := slices.Index(s.Expanded, n); i >= 0 {
		s.Expanded = slices.Delete(slices.Clone(s.Expanded), i, i+1)
		return false
	}
	s.Expanded = append(slices.Clone(s.Expanded), n)
	slices.Sort(s.Expanded)
	return true
}

// Expand marks day n expanded.
func (s *State) Expand(n int) {
	if !s.IsExpanded(n) {
		s.ToggleDay(n)
	}
}

// ExpandAll expands every day of it.
func (s *State) ExpandAll(it *models.Itinerary) {
	s.Expanded = nil
	if it == nil {
		return
	}
	for _, d := range it.Days {
		s.Expanded = append(s.Expanded, d.DayNumber)
	}
	slices.Sort(s.Expanded)
	s.Expanded = slices.Compact(s.Expanded)
}

// CollapseAll collapses every day.
func (s *State) CollapseAll() {
	s.Expanded = []int{}
}

func (s State) IsExpanded(n int) bool {
	return slices.Contains(s.Expanded, n)
}

// VisibleDays returns the days that pass the day filter, in display order.
func (s State) VisibleDays(it *models.Itinerary) []models.Day {
	out := []models.Day{}
	if it == nil {
		return out
	}
	for _, d := range it.Days {
		if s.SelectedDay == AllDays || d.DayNumber == s.SelectedDay {
			out = append(out, d)
		}
	}
	return out
}

// Selected returns the highlighted activity and its day number.
func (s State) Selected(it *models.Itinerary) (models.Activity, int, bool) {
	if it == nil || !s.HasActivity() {
		return models.Activity{}, 0, false
	}
	for _, d := range it.Days {
		for _, a := range d.Activities {
			if s.Matches(a) {
				return a, d.DayNumber, true
			}
		}
	}
	return models.Activity{}, 0, false
}

// Reconcile drops selections that no longer resolve against it, typically
// after the document was replaced.
func (s *State) Reconcile(it *models.Itinerary) {
	if _, _, ok := s.Selected(it); !ok {
		s.ClearActivity()
	}
	if s.SelectedDay != AllDays {
		if it == nil {
			s.SelectedDay = AllDays
		} else if _, ok := it.DayByNumber(s.SelectedDay); !ok {
			s.SelectedDay = AllDays
		}
	}
	kept := s.Expanded[:0:0]
	for _, n := range s.Expanded {
		if it == nil {
			break
		}
		if _, ok := it.DayByNumber(n); ok {
			kept = append(kept, n)
		}
	}
	s.Expanded = kept
}

// Clone returns a copy that shares nothing with s.
func (s State) Clone() State {
	out := s
	out.Expanded = slices.Clone(s.Expanded)
	if out.Expanded == nil {
		out.Expanded = []int{}
	}
	if s.SelectedKey != nil {
		k := *s.SelectedKey
		out.SelectedKey = &k
	}
	return out
}
