// Package models defines the itinerary document types for Itinera.
package models

import (
	"math"

	"github.com/google/uuid"
)

// Category classifies an activity. It drives map marker colors and
// per-category counts.
type Category string

// Known activity categories.
const (
	CategoryTransport     Category = "transport"
	CategoryAccommodation Category = "accommodation"
	CategoryAttraction    Category = "attraction"
	CategoryFood          Category = "food"
	CategoryActivity      Category = "activity"
	CategoryShopping      Category = "shopping"
	CategoryMuseum        Category = "museum"
	CategorySightseeing   Category = "sightseeing"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryTransport,
	CategoryAccommodation,
	CategoryAttraction,
	CategoryFood,
	CategoryActivity,
	CategoryShopping,
	CategoryMuseum,
	CategorySightseeing,
}

// Known reports whether c is one of the fixed categories.
func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Itinerary is the full trip document.
//
// TotalCost is advisory only; the authoritative total is the sum of
// activity costs (see views.TotalCost).
type Itinerary struct {
	ID          string   `json:"id,omitempty"`
	Destination string   `json:"destination"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	TotalCost   *float64 `json:"totalCost,omitempty"`
	Days        []Day    `json:"days"`
}

// Day is one calendar day of the trip. DayNumber, not the slice index,
// identifies the day for expand/collapse and map filtering.
type Day struct {
	ID         string     `json:"id,omitempty"`
	DayNumber  int        `json:"dayNumber"`
	Date       string     `json:"date,omitempty"`
	Title      string     `json:"title,omitempty"`
	Activities []Activity `json:"activities"`
}

// Activity is a single event within a day.
//
// Time and Duration are free display text. Cost is nil when not provided,
// which renders differently from an explicit zero ("Free").
type Activity struct {
	ID          string       `json:"id,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Time        string       `json:"time,omitempty"`
	Duration    string       `json:"duration,omitempty"`
	Location    string       `json:"location,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Cost        *float64     `json:"cost,omitempty"`
	Category    Category     `json:"category,omitempty"`
}

// Coordinates is a geographic position. Either component may be missing
// in ingested documents.
type Coordinates struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// Key is the legacy (name, time) identity of an activity.
type Key struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// LatLng builds a fully populated Coordinates value.
func LatLng(lat, lng float64) *Coordinates {
	return &Coordinates{Lat: &lat, Lng: &lng}
}

// Point returns the position when both components are present, finite
// and within range.
func (c *Coordinates) Point() (lat, lng float64, ok bool) {
	if c == nil || c.Lat == nil || c.Lng == nil {
		return 0, 0, false
	}
	lat, lng = *c.Lat, *c.Lng
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}
	return lat, lng, true
}

// CostValue returns the cost, treating a missing value as zero.
func (a Activity) CostValue() float64 {
	if a.Cost == nil {
		return 0
	}
	return *a.Cost
}

// Key returns the legacy identity of a.
func (a Activity) Key() Key {
	return Key{Name: a.Name, Time: a.Time}
}

// Located reports whether a has mappable coordinates.
func (a Activity) Located() bool {
	_, _, ok := a.Coordinates.Point()
	return ok
}

// Activities flattens every activity of it in display order.
func (it *Itinerary) Activities() []Activity {
	if it == nil {
		return nil
	}
	var out []Activity
	for _, d := range it.Days {
		out = append(out, d.Activities...)
	}
	return out
}

// DayByNumber returns the index of the day with the given number.
func (it *Itinerary) DayByNumber(n int) (int, bool) {
	if it == nil {
		return 0, false
	}
	for i, d := range it.Days {
		if d.DayNumber == n {
			return i, true
		}
	}
	return 0, false
}

// Normalize prepares a freshly ingested document for use: nil lists become
// empty, missing day numbers fall back to their position, and every
// itinerary, day and activity gets a stable id. It mutates it in place and
// must only be called on a document nobody else holds yet.
func (it *Itinerary) Normalize() {
	if it == nil {
		return
	}
	if it.ID == "" {
		it.ID = NewID()
	}
	if it.Days == nil {
		it.Days = []Day{}
	}
	for i := range it.Days {
		d := &it.Days[i]
		if d.ID == "" {
			d.ID = NewID()
		}
		if d.DayNumber <= 0 {
			d.DayNumber = i + 1
		}
		if d.Activities == nil {
			d.Activities = []Activity{}
		}
		for j := range d.Activities {
			if d.Activities[j].ID == "" {
				d.Activities[j].ID = NewID()
			}
		}
	}
}

// Clone returns a deep copy of it.
func (it *Itinerary) Clone() *Itinerary {
	if it == nil {
		return nil
	}
	out := *it
	out.TotalCost = clonePtr(it.TotalCost)
	if it.Days != nil {
		out.Days = make([]Day, len(it.Days))
		for i, d := range it.Days {
			out.Days[i] = d.clone()
		}
	}
	return &out
}

func (d Day) clone() Day {
	out := d
	if d.Activities != nil {
		out.Activities = make([]Activity, len(d.Activities))
		for i, a := range d.Activities {
			out.Activities[i] = a.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of a.
func (a Activity) Clone() Activity {
	out := a
	out.Cost = clonePtr(a.Cost)
	if a.Coordinates != nil {
		out.Coordinates = &Coordinates{
			Lat: clonePtr(a.Coordinates.Lat),
			Lng: clonePtr(a.Coordinates.Lng),
		}
	}
	return out
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
