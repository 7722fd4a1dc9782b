package generator

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/starford/itinera/internal/models"
)

//go:embed catalog/*.json
var catalogFS embed.FS

// Default artificial latency of the mock.
const (
	DefaultMinDelay = 1500 * time.Millisecond
	DefaultMaxDelay = 3000 * time.Millisecond
)

// catalogKeywords maps prompt keywords to a catalog file. Prompts that
// match nothing get DefaultDestination.
var catalogKeywords = []struct {
	file     string
	keywords []string
}{
	{"tokyo", []string{"tokyo", "japan"}},
	{"paris", []string{"paris", "france"}},
}

// DefaultDestination is served when the prompt names no known place.
const DefaultDestination = "paris"

var dayCountRe = regexp.MustCompile(`(\d+)[\s-]*days?\b`)

// Mock is a Provider and Places implementation with canned answers.
type Mock struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	// Rand returns a value in [0, 1). Defaults to math/rand/v2.
	Rand func() float64
}

// NewMock returns a Mock with the given delay bounds. Zero bounds make it
// answer immediately.
func NewMock(minDelay, maxDelay time.Duration) *Mock {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Mock{MinDelay: minDelay, MaxDelay: maxDelay}
}

func (m *Mock) random() float64 {
	if m.Rand != nil {
		return m.Rand()
	}
	return rand.Float64()
}

// sleep waits for a duration in [lo, hi] or until ctx is done.
func (m *Mock) sleep(ctx context.Context, lo, hi time.Duration) error {
	d := lo
	if hi > lo {
		d += time.Duration(m.random() * float64(hi-lo))
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Generate picks a canned itinerary for prompt after the configured delay.
func (m *Mock) Generate(ctx context.Context, prompt string) (*Result, error) {
	if err := m.sleep(ctx, m.MinDelay, m.MaxDelay); err != nil {
		return nil, fmt.Errorf("generator: mock: %w", err)
	}

	it, err := loadCatalog(pickCatalog(prompt))
	if err != nil {
		return nil, err
	}
	if n, ok := requestedDays(prompt); ok && n < len(it.Days) {
		trimDays(it, n)
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("I've created a %d-day itinerary for %s! Check it out on the right.",
			len(it.Days), it.Destination),
		Itinerary: it,
	}, nil
}

func loadCatalog(name string) (*models.Itinerary, error) {
	data, err := catalogFS.ReadFile("catalog/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("generator: catalog %q: %w", name, err)
	}
	var it models.Itinerary
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, fmt.Errorf("generator: decode catalog %q: %w", name, err)
	}
	return &it, nil
}

func pickCatalog(prompt string) string {
	p := strings.ToLower(prompt)
	for _, c := range catalogKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(p, kw) {
				return c.file
			}
		}
	}
	return DefaultDestination
}

func requestedDays(prompt string) (int, bool) {
	m := dayCountRe.FindStringSubmatch(strings.ToLower(prompt))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func trimDays(it *models.Itinerary, n int) {
	it.Days = it.Days[:n]
	if start, err := time.Parse(time.DateOnly, it.StartDate); err == nil {
		it.EndDate = start.AddDate(0, 0, n-1).Format(time.DateOnly)
	}
}

// POIDetails returns a fixed point of interest.
func (m *Mock) POIDetails(ctx context.Context, placeID string) (*POI, error) {
	if err := m.sleep(ctx, 0, m.MinDelay/3); err != nil {
		return nil, err
	}
	return &POI{
		PlaceID:     placeID,
		Name:        "Sample Location",
		Description: "This is a mock POI returned by the mock API",
		Coordinates: models.LatLng(35.6762, 139.6503),
		Rating:      4.5,
		Reviews:     1234,
	}, nil
}

// SearchPlaces returns two synthetic results for query.
func (m *Mock) SearchPlaces(ctx context.Context, query, location string) (*SearchResults, error) {
	if err := m.sleep(ctx, 0, m.MinDelay/2); err != nil {
		return nil, err
	}
	return &SearchResults{Results: []Place{
		{Name: query + " - Result 1", Location: location, Coordinates: models.LatLng(35.6762, 139.6503)},
		{Name: query + " - Result 2", Location: location, Coordinates: models.LatLng(35.6812, 139.6553)},
	}}, nil
}

// Geocode jitters a fixed point by up to ±0.05 degrees.
func (m *Mock) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	if err := m.sleep(ctx, 0, m.MinDelay/3); err != nil {
		return nil, err
	}
	return &GeocodeResult{
		Address:     address,
		Coordinates: models.LatLng(35.6762+(m.random()-0.5)*0.1, 139.6503+(m.random()-0.5)*0.1),
	}, nil
}
