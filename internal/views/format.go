package views

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders v as US dollars with grouping, e.g. "$1,234.50".
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	if v < 0 {
		return "-$" + printer.Sprintf("%.2f", -v)
	}
	return "$" + printer.Sprintf("%.2f", v)
}

// CostLabel is the per-activity label: "Free" for an explicit zero, empty
// when the cost is unknown.
func CostLabel(cost *float64) string {
	switch {
	case cost == nil:
		return ""
	case *cost == 0:
		return "Free"
	default:
		return FormatCurrency(*cost)
	}
}

// FormatDistance renders km, switching to meters below one kilometre.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d meters", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1f km", km)
}

// DaysBetween returns the number of whole days separating two YYYY-MM-DD
// dates, regardless of their order. ok is false when either fails to parse.
func DaysBetween(start, end string) (n int, ok bool) {
	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return 0, false
	}
	e, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return 0, false
	}
	d := e.Sub(s)
	if d < 0 {
		d = -d
	}
	return int(math.Ceil(d.Hours() / 24)), true
}
