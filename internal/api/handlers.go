package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/itinera/internal/generator"
	"github.com/starford/itinera/internal/models"
	"github.com/starford/itinera/internal/planner"
	"github.com/starford/itinera/internal/views"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *planner.Service
	places generator.Places
}

// NewHandler creates a new Handler.
func NewHandler(svc *planner.Service, places generator.Places) *Handler {
	return &Handler{svc: svc, places: places}
}

// intParam parses a non-negative integer URL parameter, writing a 400 on
// failure.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid "+name))
		return 0, false
	}
	return n, true
}

// Generate handles POST /api/generate.
//
//	@Summary		Generate an itinerary from a free-text prompt
//	@Tags			itinerary
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GenerateRequest	true	"Prompt"
//	@Success		200		{object}	planner.GenerateResult
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse	"Superseded by a newer request"
//	@Failure		429		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Generate(r.Context(), req.Prompt)
	if err != nil {
		writeError(w, "generate", err)
		return
	}
	setETag(w, res.Revision)
	writeJSON(w, http.StatusOK, res)
}

// State handles GET /api/state.
//
//	@Summary		Lifecycle state, document and selection in one snapshot
//	@Tags			itinerary
//	@Produce		json
//	@Success		200	{object}	planner.Snapshot
//	@Security		BearerAuth
//	@Router			/state [get]
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Snapshot()
	setETag(w, snap.Revision)
	writeJSON(w, http.StatusOK, snap)
}

// GetItinerary handles GET /api/itinerary.
//
//	@Summary		Get the current itinerary
//	@Tags			itinerary
//	@Produce		json
//	@Success		200	{object}	DocumentResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/itinerary [get]
func (h *Handler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Current()
	if err != nil {
		writeError(w, "get itinerary", err)
		return
	}
	setETag(w, doc.Revision)
	writeJSON(w, http.StatusOK, doc)
}

// ClearItinerary handles DELETE /api/itinerary.
func (h *Handler) ClearItinerary(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context()); err != nil {
		writeError(w, "clear itinerary", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/itinerary/summary.
//
//	@Summary		Cost, count and category aggregates
//	@Tags			views
//	@Produce		json
//	@Success		200	{object}	views.Summary
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/itinerary/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary(r.Context())
	if err != nil {
		writeError(w, "summary", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Map handles GET /api/itinerary/map.
//
//	@Summary		Map markers, bounds and route length
//	@Description	Without a day parameter the selected day filter applies.
//	@Tags			views
//	@Produce		json
//	@Param			day	query		int	false	"Day number, 0 for all days"
//	@Success		200	{object}	views.MapView
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/itinerary/map [get]
func (h *Handler) Map(w http.ResponseWriter, r *http.Request) {
	var day *int
	if raw := r.URL.Query().Get("day"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid day"))
			return
		}
		day = &n
	}
	mv, err := h.svc.MapView(r.Context(), day)
	if err != nil {
		writeError(w, "map", err)
		return
	}
	writeJSON(w, http.StatusOK, mv)
}

// VisibleDays handles GET /api/itinerary/days.
func (h *Handler) VisibleDays(w http.ResponseWriter, r *http.Request) {
	days, err := h.svc.VisibleDays(r.Context())
	if err != nil {
		writeError(w, "visible days", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

// UpdateActivity handles PATCH /api/itinerary/days/{day}/activities/{activity}.
//
//	@Summary		Merge fields into one activity
//	@Tags			activities
//	@Accept			json
//	@Produce		json
//	@Param			day			path		int						true	"Day index (0-based)"
//	@Param			activity	path		int						true	"Activity index (0-based)"
//	@Param			If-Match	header		string					false	"Revision for optimistic concurrency"
//	@Param			body		body		ActivityPatchRequest	true	"Fields to change"
//	@Success		200			{object}	DocumentResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/itinerary/days/{day}/activities/{activity} [patch]
func (h *Handler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	day, ok := intParam(w, r, "day")
	if !ok {
		return
	}
	act, ok := intParam(w, r, "activity")
	if !ok {
		return
	}
	var req ActivityPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := h.svc.UpdateActivity(r.Context(), day, act, req.ActivityPatch, ifMatch(r))
	if err != nil {
		writeError(w, "update activity", err)
		return
	}
	setETag(w, doc.Revision)
	writeJSON(w, http.StatusOK, doc)
}

// RemoveActivity handles DELETE /api/itinerary/days/{day}/activities/{activity}.
func (h *Handler) RemoveActivity(w http.ResponseWriter, r *http.Request) {
	day, ok := intParam(w, r, "day")
	if !ok {
		return
	}
	act, ok := intParam(w, r, "activity")
	if !ok {
		return
	}
	doc, removed, err := h.svc.RemoveActivity(r.Context(), day, act, ifMatch(r))
	if err != nil {
		writeError(w, "remove activity", err)
		return
	}
	setETag(w, doc.Revision)
	writeJSON(w, http.StatusOK, RemoveResponse{Document: doc, Removed: removed})
}

// AddActivity handles POST /api/itinerary/days/{day}/activities.
//
//	@Summary		Append an activity to a day
//	@Tags			activities
//	@Accept			json
//	@Produce		json
//	@Param			day		path		int				true	"Day index (0-based)"
//	@Param			body	body		ActivityRequest	true	"Activity"
//	@Success		201		{object}	DocumentResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/itinerary/days/{day}/activities [post]
func (h *Handler) AddActivity(w http.ResponseWriter, r *http.Request) {
	day, ok := intParam(w, r, "day")
	if !ok {
		return
	}
	var req ActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := h.svc.AddActivity(r.Context(), day, req.Activity, ifMatch(r))
	if err != nil {
		writeError(w, "add activity", err)
		return
	}
	setETag(w, doc.Revision)
	writeJSON(w, http.StatusCreated, doc)
}

// ReorderActivities handles POST /api/itinerary/days/{day}/reorder.
func (h *Handler) ReorderActivities(w http.ResponseWriter, r *http.Request) {
	day, ok := intParam(w, r, "day")
	if !ok {
		return
	}
	var req ReorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := h.svc.ReorderActivities(r.Context(), day, *req.From, *req.To, ifMatch(r))
	if err != nil {
		writeError(w, "reorder activities", err)
		return
	}
	setETag(w, doc.Revision)
	writeJSON(w, http.StatusOK, doc)
}

// UpdateActivityByID handles PATCH /api/activities/{id}.
func (h *Handler) UpdateActivityByID(w http.ResponseWriter, r *http.Request) {
	var req ActivityPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := h.svc.UpdateActivityByID(r.Context(), chi.URLParam(r, "id"), req.ActivityPatch, ifMatch(r))
	if err != nil {
		writeError(w, "update activity", err)
		return
	}
	setETag(w, doc.Revision)
	writeJSON(w, http.StatusOK, doc)
}

// RemoveActivityByID handles DELETE /api/activities/{id}.
func (h *Handler) RemoveActivityByID(w http.ResponseWriter, r *http.Request) {
	doc, removed, err := h.svc.RemoveActivityByID(r.Context(), chi.URLParam(r, "id"), ifMatch(r))
	if err != nil {
		writeError(w, "remove activity", err)
		return
	}
	setETag(w, doc.Revision)
	writeJSON(w, http.StatusOK, RemoveResponse{Document: doc, Removed: removed})
}

// MoveActivity handles POST /api/activities/{id}/move.
func (h *Handler) MoveActivity(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := h.svc.MoveActivity(r.Context(), chi.URLParam(r, "id"), *req.To, ifMatch(r))
	if err != nil {
		writeError(w, "move activity", err)
		return
	}
	setETag(w, doc.Revision)
	writeJSON(w, http.StatusOK, doc)
}

// Save handles POST /api/itinerary/save.
//
//	@Summary		Persist the current itinerary to the local slot store
//	@Tags			persistence
//	@Produce		json
//	@Success		200	{object}	SaveResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/itinerary/save [post]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	at, err := h.svc.Save(r.Context())
	if err != nil {
		writeError(w, "save", err)
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{SavedAt: at.Format(planner.SavedAtLayout)})
}

// Load handles POST /api/itinerary/load.
//
//	@Summary		Install the saved itinerary
//	@Description	Always 200; "loaded" is false when nothing usable was saved.
//	@Tags			persistence
//	@Produce		json
//	@Success		200	{object}	LoadResponse
//	@Security		BearerAuth
//	@Router			/itinerary/load [post]
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	resp := LoadResponse{Loaded: h.svc.Load(r.Context())}
	if resp.Loaded {
		if doc, err := h.svc.Current(); err == nil {
			resp.Itinerary, resp.Revision = doc.Itinerary, doc.Revision
			setETag(w, doc.Revision)
		}
	}
	if at, ok := h.svc.SavedAt(r.Context()); ok {
		resp.SavedAt = at.Format(planner.SavedAtLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

// SavedAt handles GET /api/itinerary/saved.
func (h *Handler) SavedAt(w http.ResponseWriter, r *http.Request) {
	at, ok := h.svc.SavedAt(r.Context())
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("nothing saved"))
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{SavedAt: at.Format(planner.SavedAtLayout)})
}

// Distance handles GET /api/distance.
//
//	@Summary		Great-circle distance between two points
//	@Tags			views
//	@Produce		json
//	@Param			lat1	query		number	true	"Latitude of the first point"
//	@Param			lng1	query		number	true	"Longitude of the first point"
//	@Param			lat2	query		number	true	"Latitude of the second point"
//	@Param			lng2	query		number	true	"Longitude of the second point"
//	@Success		200		{object}	DistanceResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/distance [get]
func (h *Handler) Distance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var v [4]float64
	for i, name := range []string{"lat1", "lng1", "lat2", "lng2"} {
		f, err := strconv.ParseFloat(q.Get(name), 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("query parameter '"+name+"' must be a number"))
			return
		}
		v[i] = f
	}
	for i, name := range []string{"1", "2"} {
		if _, _, ok := models.LatLng(v[2*i], v[2*i+1]).Point(); !ok {
			writeJSON(w, http.StatusBadRequest, errorBody("point "+name+" must be a finite lat in [-90,90] and lng in [-180,180]"))
			return
		}
	}
	km := views.Haversine(v[0], v[1], v[2], v[3])
	writeJSON(w, http.StatusOK, DistanceResponse{Km: km, Label: views.FormatDistance(km)})
}

func (h *Handler) placesFailed(w http.ResponseWriter, op string, err error) {
	slog.Warn(op+" failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
}

// POIDetails handles GET /api/poi/{id}.
func (h *Handler) POIDetails(w http.ResponseWriter, r *http.Request) {
	poi, err := h.places.POIDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.placesFailed(w, "poi details", err)
		return
	}
	writeJSON(w, http.StatusOK, poi)
}

// SearchPlaces handles GET /api/places/search.
func (h *Handler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("query") == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'query' is required"))
		return
	}
	res, err := h.places.SearchPlaces(r.Context(), q.Get("query"), q.Get("location"))
	if err != nil {
		h.placesFailed(w, "search places", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Geocode handles GET /api/geocode.
func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	addr := r.URL.Query().Get("address")
	if addr == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'address' is required"))
		return
	}
	res, err := h.places.Geocode(r.Context(), addr)
	if err != nil {
		h.placesFailed(w, "geocode", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
