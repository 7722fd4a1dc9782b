// Package generator turns a free-text prompt into an itinerary. Mock serves
// canned documents after an artificial delay; Client talks to a real
// backend over JSON/HTTP.
package generator

import (
	"context"

	"github.com/starford/itinera/internal/models"
)

// Result is what a provider returns for a prompt.
type Result struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Itinerary *models.Itinerary `json:"itinerary"`
}

// Provider produces itineraries. Implementations must honour ctx and must
// return a document the caller may own outright.
type Provider interface {
	Generate(ctx context.Context, prompt string) (*Result, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, prompt string) (*Result, error)

func (f ProviderFunc) Generate(ctx context.Context, prompt string) (*Result, error) {
	return f(ctx, prompt)
}

// Places answers the auxiliary lookups a map view needs.
type Places interface {
	POIDetails(ctx context.Context, placeID string) (*POI, error)
	SearchPlaces(ctx context.Context, query, location string) (*SearchResults, error)
	Geocode(ctx context.Context, address string) (*GeocodeResult, error)
}

type POI struct {
	PlaceID     string              `json:"placeId"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Coordinates *models.Coordinates `json:"coordinates,omitempty"`
	Rating      float64             `json:"rating"`
	Reviews     int                 `json:"reviews"`
}

type Place struct {
	Name        string              `json:"name"`
	Location    string              `json:"location"`
	Coordinates *models.Coordinates `json:"coordinates,omitempty"`
}

type SearchResults struct {
	Results []Place `json:"results"`
}

type GeocodeResult struct {
	Address     string              `json:"address"`
	Coordinates *models.Coordinates `json:"coordinates,omitempty"`
}
