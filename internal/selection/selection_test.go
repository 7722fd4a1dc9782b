package selection

import (
	"reflect"
	"testing"

	"github.com/starford/itinera/internal/models"
)

func doc() *models.Itinerary {
	it := &models.Itinerary{Days: []models.Day{
		{DayNumber: 1, Activities: []models.Activity{{Name: "Louvre", Time: "09:00 AM"}, {Name: "Lunch", Time: "12:30 PM"}}},
		{DayNumber: 2, Activities: []models.Activity{{Name: "Louvre", Time: "09:00 AM"}}},
		{DayNumber: 3},
	}}
	it.Normalize()
	return it
}

func TestSelectActivity_ByID(t *testing.T) {
	it := doc()
	var s State
	s.SelectActivity(it.Days[1].Activities[0])

	if s.Matches(it.Days[0].Activities[0]) {
		t.Error("same name and time on another day must not match when ids exist")
	}
	if !s.Matches(it.Days[1].Activities[0]) {
		t.Error("selected activity should match")
	}
	a, day, ok := s.Selected(it)
	if !ok || day != 2 || a.ID != it.Days[1].Activities[0].ID {
		t.Errorf("Selected = %+v %d %v", a, day, ok)
	}
}

func TestSelectActivity_LegacyKey(t *testing.T) {
	var s State
	s.SelectActivity(models.Activity{Name: "Louvre", Time: "09:00 AM"})
	if !s.Matches(models.Activity{Name: "Louvre", Time: "09:00 AM"}) {
		t.Error("key match expected")
	}
	if s.Matches(models.Activity{Name: "Louvre", Time: "10:00 AM"}) {
		t.Error("different time must not match")
	}
	s.ClearActivity()
	if s.HasActivity() || s.Matches(models.Activity{Name: "Louvre", Time: "09:00 AM"}) {
		t.Error("cleared selection still matches")
	}
}

func TestSelectDay_TogglesBackToAll(t *testing.T) {
	var s State
	s.SelectDay(2)
	if s.SelectedDay != 2 {
		t.Fatalf("SelectedDay = %d", s.SelectedDay)
	}
	s.SelectDay(2)
	if s.SelectedDay != AllDays {
		t.Errorf("reselecting should reset, got %d", s.SelectedDay)
	}
	s.SelectDay(3)
	s.SelectDay(0)
	if s.SelectedDay != AllDays {
		t.Errorf("0 should reset, got %d", s.SelectedDay)
	}
}

func TestVisibleDays(t *testing.T) {
	it := doc()
	var s State
	if got := len(s.VisibleDays(it)); got != 3 {
		t.Errorf("all days = %d", got)
	}
	s.SelectDay(2)
	got := s.VisibleDays(it)
	if len(got) != 1 || got[0].DayNumber != 2 {
		t.Errorf("filtered = %+v", got)
	}
	if v := s.VisibleDays(nil); v == nil || len(v) != 0 {
		t.Error("nil document should give an empty slice")
	}
}

func TestToggleAndExpand(t *testing.T) {
	var s State
	if !s.ToggleDay(3) || !s.ToggleDay(1) {
		t.Fatal("toggle should expand")
	}
	if !reflect.DeepEqual(s.Expanded, []int{1, 3}) {
		t.Errorf("expanded = %v", s.Expanded)
	}
	if s.ToggleDay(3) || s.IsExpanded(3) {
		t.Error("second toggle should collapse")
	}
	s.Expand(1)
	if !reflect.DeepEqual(s.Expanded, []int{1}) {
		t.Errorf("Expand duplicated: %v", s.Expanded)
	}
	s.ExpandAll(doc())
	if !reflect.DeepEqual(s.Expanded, []int{1, 2, 3}) {
		t.Errorf("ExpandAll = %v", s.Expanded)
	}
	s.CollapseAll()
	if len(s.Expanded) != 0 {
		t.Error("CollapseAll left days expanded")
	}
}

func TestReconcile(t *testing.T) {
	it := doc()
	var s State
	s.SelectActivity(it.Days[0].Activities[1])
	s.SelectDay(3)
	s.ToggleDay(1)
	s.ToggleDay(3)

	smaller := &models.Itinerary{Days: []models.Day{it.Days[0]}}
	smaller.Days[0].Activities = smaller.Days[0].Activities[:1]
	s.Reconcile(smaller)

	if s.HasActivity() {
		t.Error("selection of removed activity should be dropped")
	}
	if s.SelectedDay != AllDays {
		t.Error("filter on missing day should reset")
	}
	if !reflect.DeepEqual(s.Expanded, []int{1}) {
		t.Errorf("expanded = %v", s.Expanded)
	}

	s.Reconcile(nil)
	if len(s.Expanded) != 0 {
		t.Error("nil document clears expansion")
	}
}

func TestClone_Independent(t *testing.T) {
	var s State
	s.ToggleDay(1)
	s.SelectActivity(models.Activity{Name: "x", Time: "y"})
	cp := s.Clone()
	cp.ToggleDay(2)
	cp.SelectedKey.Name = "z"
	if s.IsExpanded(2) || s.SelectedKey.Name != "x" {
		t.Error("clone shares state")
	}
	if (State{}).Clone().Expanded == nil {
		t.Error("clone should normalise expanded to an empty list")
	}
}
