// Package views computes read-only projections of an itinerary: cost and
// count aggregates, geographic bounds and the point list handed to maps.
// Every function accepts a nil or partially filled document.
package views

import (
	"strconv"

	"github.com/starford/itinera/internal/models"
)

// TotalCost sums activity costs. When that sum is zero the stored
// TotalCost of the itinerary, if any, is returned instead.
func TotalCost(it *models.Itinerary) float64 {
	if it == nil {
		return 0
	}
	var sum float64
	for _, d := range it.Days {
		sum += DayCost(d)
	}
	if sum == 0 && it.TotalCost != nil {
		return *it.TotalCost
	}
	return sum
}

// PerDayCost divides the total by the number of days, or by one when there
// are none.
func PerDayCost(it *models.Itinerary) float64 {
	n := 0
	if it != nil {
		n = len(it.Days)
	}
	return TotalCost(it) / float64(max(1, n))
}

// DayCost sums the costs of a single day.
func DayCost(d models.Day) float64 {
	var sum float64
	for _, a := range d.Activities {
		sum += a.CostValue()
	}
	return sum
}

// ActivityCount counts activities across all days.
func ActivityCount(it *models.Itinerary) int {
	if it == nil {
		return 0
	}
	n := 0
	for _, d := range it.Days {
		n += len(d.Activities)
	}
	return n
}

// CategoryCounts counts activities per category. Activities without a
// category are not counted.
func CategoryCounts(it *models.Itinerary) map[models.Category]int {
	out := make(map[models.Category]int)
	for _, a := range it.Activities() {
		if a.Category != "" {
			out[a.Category]++
		}
	}
	return out
}

// DaySummary aggregates one day.
type DaySummary struct {
	DayNumber     int     `json:"dayNumber"`
	Title         string  `json:"title"`
	Date          string  `json:"date,omitempty"`
	ActivityCount int     `json:"activityCount"`
	Cost          float64 `json:"cost"`
}

// Summary bundles every aggregate of a document.
type Summary struct {
	Destination   string                  `json:"destination"`
	StartDate     string                  `json:"startDate"`
	EndDate       string                  `json:"endDate"`
	DayCount      int                     `json:"dayCount"`
	Nights        int                     `json:"nights"`
	ActivityCount int                     `json:"activityCount"`
	LocatedCount  int                     `json:"locatedCount"`
	TotalCost     float64                 `json:"totalCost"`
	PerDayCost    float64                 `json:"perDayCost"`
	TotalLabel    string                  `json:"totalLabel"`
	PerDayLabel   string                  `json:"perDayLabel"`
	Categories    map[models.Category]int `json:"categories"`
	Bounds        *Bounds                 `json:"bounds"`
	Days          []DaySummary            `json:"days"`
}

// Summarize computes the Summary of it.
func Summarize(it *models.Itinerary) Summary {
	s := Summary{
		ActivityCount: ActivityCount(it),
		LocatedCount:  len(Located(it.Activities())),
		TotalCost:     TotalCost(it),
		PerDayCost:    PerDayCost(it),
		Categories:    CategoryCounts(it),
		Days:          []DaySummary{},
	}
	s.TotalLabel = FormatCurrency(s.TotalCost)
	s.PerDayLabel = FormatCurrency(s.PerDayCost)
	if it == nil {
		return s
	}
	s.Destination = it.Destination
	s.StartDate = it.StartDate
	s.EndDate = it.EndDate
	s.DayCount = len(it.Days)
	s.Nights, _ = DaysBetween(it.StartDate, it.EndDate)
	if b, ok := GeoBounds(it.Activities()); ok {
		s.Bounds = &b
	}
	for i, d := range it.Days {
		title := d.Title
		if title == "" {
			title = "Day " + strconv.Itoa(dayNumber(d, i))
		}
		s.Days = append(s.Days, DaySummary{
			DayNumber:     dayNumber(d, i),
			Title:         title,
			Date:          d.Date,
			ActivityCount: len(d.Activities),
			Cost:          DayCost(d),
		})
	}
	return s
}

func dayNumber(d models.Day, i int) int {
	if d.DayNumber > 0 {
		return d.DayNumber
	}
	return i + 1
}
