package views

import (
	"strconv"

	"github.com/starford/itinera/internal/models"
)

// DefaultColor is used for activities without a known category.
const DefaultColor = "#3b82f6"

var categoryColors = map[models.Category]string{
	models.CategoryTransport:     "#6b7280",
	models.CategoryAccommodation: "#8b5cf6",
	models.CategoryAttraction:    "#f59e0b",
	models.CategoryFood:          "#ef4444",
	models.CategoryActivity:      "#10b981",
	models.CategoryShopping:      "#ec4899",
	models.CategoryMuseum:        "#6366f1",
	models.CategorySightseeing:   "#14b8a6",
}

// CategoryColor returns the marker color for c.
func CategoryColor(c models.Category) string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return DefaultColor
}

// MapPoint is one marker for the map collaborator.
type MapPoint struct {
	Number     int             `json:"number"`
	DayNumber  int             `json:"dayNumber"`
	ActivityID string          `json:"activityId"`
	Lat        float64         `json:"lat"`
	Lng        float64         `json:"lng"`
	Category   models.Category `json:"category,omitempty"`
	Label      string          `json:"label"`
	Color      string          `json:"color"`
	CostLabel  string          `json:"costLabel,omitempty"`
}

// MapView is the full map projection: markers in route order, the bounds
// to fit, and the route length.
type MapView struct {
	Points     []MapPoint `json:"points"`
	Bounds     *Bounds    `json:"bounds"`
	RouteKm    float64    `json:"routeKm"`
	RouteLabel string     `json:"routeLabel,omitempty"`
}

// MapPoints lists the located activities of the given day (0 for every
// day) in display order. Markers are numbered from 1 in that order, which
// is also the route order.
func MapPoints(it *models.Itinerary, day int) []MapPoint {
	out := []MapPoint{}
	if it == nil {
		return out
	}
	for i, d := range it.Days {
		n := dayNumber(d, i)
		if day != 0 && n != day {
			continue
		}
		for _, a := range d.Activities {
			lat, lng, ok := a.Coordinates.Point()
			if !ok {
				continue
			}
			out = append(out, MapPoint{
				Number:     len(out) + 1,
				DayNumber:  n,
				ActivityID: a.ID,
				Lat:        lat,
				Lng:        lng,
				Category:   a.Category,
				Label:      label(a, len(out)+1),
				Color:      CategoryColor(a.Category),
				CostLabel:  CostLabel(a.Cost),
			})
		}
	}
	return out
}

// BuildMapView projects it for the map, filtered to one day when day != 0.
func BuildMapView(it *models.Itinerary, day int) MapView {
	points := MapPoints(it, day)
	v := MapView{Points: points}
	if len(points) == 0 {
		return v
	}
	route := make([]LatLng, len(points))
	for i, p := range points {
		route[i] = LatLng{p.Lat, p.Lng}
	}
	b, _ := boundsOf(route)
	v.Bounds = &b
	v.RouteKm = RouteDistance(route)
	v.RouteLabel = FormatDistance(v.RouteKm)
	return v
}

func label(a models.Activity, n int) string {
	if a.Name != "" {
		return a.Name
	}
	return "Stop " + strconv.Itoa(n)
}
