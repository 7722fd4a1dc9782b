package models

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/starford/itinera/internal/apperr"
)

func sample() *Itinerary {
	it := &Itinerary{
		Destination: "Paris, France",
		StartDate:   "2025-11-01",
		EndDate:     "2025-11-02",
		Days: []Day{
			{DayNumber: 1, Title: "Art", Activities: []Activity{
				{Name: "Louvre", Time: "09:00 AM", Cost: Ptr(20.0), Category: CategoryMuseum, Coordinates: LatLng(48.8611, 2.3380)},
				{Name: "Lunch", Time: "12:30 PM", Cost: Ptr(30.0), Category: CategoryFood},
				{Name: "Tuileries", Time: "03:00 PM", Cost: Ptr(0.0), Category: CategorySightseeing},
			}},
			{DayNumber: 2, Title: "Montmartre", Activities: []Activity{
				{Name: "Sacre-Coeur", Time: "09:00 AM", Category: CategorySightseeing},
			}},
		},
	}
	it.Normalize()
	return it
}

func names(acts []Activity) []string {
	out := make([]string, len(acts))
	for i, a := range acts {
		out[i] = a.Name
	}
	return out
}

func TestUpdateActivity_OnlyTouchesTarget(t *testing.T) {
	it := sample()
	before := it.Clone()

	out, err := it.UpdateActivity(0, 0, ActivityPatch{Cost: Ptr(99.0)})
	if err != nil {
		t.Fatalf("UpdateActivity: %v", err)
	}
	if out == it {
		t.Fatal("expected a distinct document")
	}
	if !reflect.DeepEqual(it, before) {
		t.Error("input document was modified")
	}
	if got := out.Days[0].Activities[0].CostValue(); got != 99 {
		t.Errorf("cost = %v, want 99", got)
	}

	want := before.Clone()
	want.Days[0].Activities[0].Cost = Ptr(99.0)
	if !reflect.DeepEqual(out, want) {
		t.Errorf("unexpected changes:\n got %+v\nwant %+v", out, want)
	}
}

func TestUpdateActivity_SharesUntouchedDays(t *testing.T) {
	it := sample()
	out, err := it.UpdateActivity(0, 1, ActivityPatch{Name: Ptr("Brunch")})
	if err != nil {
		t.Fatal(err)
	}
	if &out.Days[1].Activities[0] != &it.Days[1].Activities[0] {
		t.Error("untouched day should share its activity slice")
	}
	if &out.Days[0].Activities[0] == &it.Days[0].Activities[0] {
		t.Error("touched day must get a fresh slice")
	}
}

func TestUpdateActivity_PatchNotAliased(t *testing.T) {
	it := sample()
	cost := 12.0
	out, _ := it.UpdateActivity(0, 0, ActivityPatch{Cost: &cost})
	cost = 1000
	if out.Days[0].Activities[0].CostValue() != 12 {
		t.Error("patch pointer leaked into the document")
	}
}

func TestRemoveThenAdd_RestoresMultiset(t *testing.T) {
	it := sample()
	removed, gone, err := it.RemoveActivity(0, 1)
	if err != nil {
		t.Fatalf("RemoveActivity: %v", err)
	}
	if gone.Name != "Lunch" {
		t.Errorf("removed %q, want Lunch", gone.Name)
	}
	if got := names(removed.Days[0].Activities); !reflect.DeepEqual(got, []string{"Louvre", "Tuileries"}) {
		t.Errorf("after remove = %v", got)
	}

	restored, err := removed.AddActivity(0, gone)
	if err != nil {
		t.Fatalf("AddActivity: %v", err)
	}
	got := names(restored.Days[0].Activities)
	want := names(it.Days[0].Activities)
	if got[len(got)-1] != "Lunch" {
		t.Errorf("re-added activity should be last, got %v", got)
	}
	sort.Strings(got)
	sort.Strings(want)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("multiset = %v, want %v", got, want)
	}
	if restored.Days[0].Activities[2].ID != gone.ID {
		t.Error("id should survive a remove/add round trip")
	}
}

func TestAddActivity_AssignsIDs(t *testing.T) {
	it := sample()
	out, err := it.AddActivity(1, Activity{Name: "Dinner"})
	if err != nil {
		t.Fatal(err)
	}
	added := out.Days[1].Activities[1]
	if added.ID == "" {
		t.Error("expected generated id")
	}

	dup := it.Days[0].Activities[0]
	out, err = it.AddActivity(1, dup)
	if err != nil {
		t.Fatal(err)
	}
	if out.Days[1].Activities[1].ID == dup.ID {
		t.Error("duplicate id should be replaced")
	}
}

func TestReorderActivities(t *testing.T) {
	tests := []struct {
		from, to int
		want     []string
	}{
		{0, 2, []string{"Lunch", "Tuileries", "Louvre"}},
		{2, 0, []string{"Tuileries", "Louvre", "Lunch"}},
		{1, 1, []string{"Louvre", "Lunch", "Tuileries"}},
		{0, 1, []string{"Lunch", "Louvre", "Tuileries"}},
	}
	for _, tt := range tests {
		it := sample()
		out, err := it.ReorderActivities(0, tt.from, tt.to)
		if err != nil {
			t.Fatalf("reorder(%d,%d): %v", tt.from, tt.to, err)
		}
		if got := names(out.Days[0].Activities); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("reorder(%d,%d) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
		if got := names(it.Days[0].Activities); !reflect.DeepEqual(got, []string{"Louvre", "Lunch", "Tuileries"}) {
			t.Errorf("input modified: %v", got)
		}
	}
}

func TestReorderActivities_KeepsMultiset(t *testing.T) {
	it := sample()
	n := len(it.Days[0].Activities)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out, err := it.ReorderActivities(0, i, j)
			if err != nil {
				t.Fatal(err)
			}
			got := names(out.Days[0].Activities)
			want := names(it.Days[0].Activities)
			sort.Strings(got)
			sort.Strings(want)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("reorder(%d,%d) changed multiset: %v", i, j, got)
			}
		}
	}
}

func TestEdits_OutOfRange(t *testing.T) {
	it := sample()
	if _, err := it.UpdateActivity(5, 0, ActivityPatch{}); !errors.Is(err, apperr.ErrOutOfRange) {
		t.Errorf("bad day: err = %v", err)
	}
	if _, _, err := it.RemoveActivity(0, 3); !errors.Is(err, apperr.ErrOutOfRange) {
		t.Errorf("bad activity: err = %v", err)
	}
	if _, err := it.ReorderActivities(0, 0, 3); !errors.Is(err, apperr.ErrOutOfRange) {
		t.Errorf("bad to: err = %v", err)
	}
	if _, err := it.AddActivity(-1, Activity{Name: "x"}); !errors.Is(err, apperr.ErrOutOfRange) {
		t.Errorf("negative day: err = %v", err)
	}
}

func TestEdits_NilDocument(t *testing.T) {
	var it *Itinerary
	if _, err := it.UpdateActivity(0, 0, ActivityPatch{}); !errors.Is(err, apperr.ErrNoItinerary) {
		t.Errorf("err = %v, want ErrNoItinerary", err)
	}
	if _, err := it.MoveActivity("x", 0); !errors.Is(err, apperr.ErrNoItinerary) {
		t.Errorf("err = %v, want ErrNoItinerary", err)
	}
}

func TestByIDEdits(t *testing.T) {
	it := sample()
	id := it.Days[0].Activities[2].ID

	out, err := it.UpdateActivityByID(id, ActivityPatch{Location: Ptr("Jardin des Tuileries")})
	if err != nil {
		t.Fatal(err)
	}
	if out.Days[0].Activities[2].Location != "Jardin des Tuileries" {
		t.Error("update by id missed")
	}

	out, err = out.MoveActivity(id, 0)
	if err != nil {
		t.Fatal(err)
	}
	if out.Days[0].Activities[0].ID != id {
		t.Error("move by id missed")
	}

	out, gone, err := out.RemoveActivityByID(id)
	if err != nil {
		t.Fatal(err)
	}
	if gone.ID != id || len(out.Days[0].Activities) != 2 {
		t.Error("remove by id missed")
	}

	if _, err := out.UpdateActivityByID(id, ActivityPatch{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("stale id: err = %v", err)
	}
}
