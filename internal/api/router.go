package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/itinera/internal/generator"
	"github.com/starford/itinera/internal/planner"
)

// Options configures the API router.
type Options struct {
	AuthEnabled bool
	Token       string
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
	// GenerateLimit is the per-client rate for POST /generate in requests
	// per second; zero disables it.
	GenerateLimit float64
	GenerateBurst int
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc *planner.Service, places generator.Places, opts Options) chi.Router {
	h := NewHandler(svc, places)
	limiter := NewRateLimiter(opts.GenerateLimit, opts.GenerateBurst)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(opts.AuthEnabled, opts.Token))

	r.With(limiter.Limit).Post("/generate", h.Generate)
	r.Get("/state", h.State)

	r.Route("/itinerary", func(r chi.Router) {
		r.Get("/", h.GetItinerary)
		r.Delete("/", h.ClearItinerary)
		r.Get("/summary", h.Summary)
		r.Get("/map", h.Map)
		r.Get("/days", h.VisibleDays)

		// Positional edits; {day} and {activity} are 0-based indexes.
		r.Post("/days/{day}/activities", h.AddActivity)
		r.Patch("/days/{day}/activities/{activity}", h.UpdateActivity)
		r.Delete("/days/{day}/activities/{activity}", h.RemoveActivity)
		r.Post("/days/{day}/reorder", h.ReorderActivities)

		r.Post("/save", h.Save)
		r.Post("/load", h.Load)
		r.Get("/saved", h.SavedAt)
	})

	r.Patch("/activities/{id}", h.UpdateActivityByID)
	r.Delete("/activities/{id}", h.RemoveActivityByID)
	r.Post("/activities/{id}/move", h.MoveActivity)

	r.Get("/selection", h.GetSelection)
	r.Put("/selection/activity", h.SelectActivity)
	r.Delete("/selection/activity", h.ClearActivity)
	r.Put("/selection/day", h.SelectDay)
	r.Post("/selection/days/expand", h.ExpandAll)
	r.Post("/selection/days/collapse", h.CollapseAll)
	r.Post("/selection/days/{day}/toggle", h.ToggleDay)

	r.Get("/distance", h.Distance)
	r.Get("/poi/{id}", h.POIDetails)
	r.Get("/places/search", h.SearchPlaces)
	r.Get("/geocode", h.Geocode)

	if opts.Events != nil {
		r.Get("/events", opts.Events.ServeHTTP)
	}

	return r
}
