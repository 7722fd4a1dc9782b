package api

import (
	"net/http"
)

// GetSelection handles GET /api/selection.
func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Selection())
}

// SelectActivity handles PUT /api/selection/activity.
//
//	@Summary		Highlight an activity in both list and map
//	@Tags			selection
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SelectActivityRequest	true	"Activity id"
//	@Success		200		{object}	SelectionResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/selection/activity [put]
func (h *Handler) SelectActivity(w http.ResponseWriter, r *http.Request) {
	var req SelectActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sel, err := h.svc.SelectActivity(r.Context(), req.ID)
	if err != nil {
		writeError(w, "select activity", err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// ClearActivity handles DELETE /api/selection/activity.
func (h *Handler) ClearActivity(w http.ResponseWriter, r *http.Request) {
	sel, err := h.svc.ClearActivitySelection(r.Context())
	if err != nil {
		writeError(w, "clear selection", err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// SelectDay handles PUT /api/selection/day.
func (h *Handler) SelectDay(w http.ResponseWriter, r *http.Request) {
	var req SelectDayRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sel, err := h.svc.SelectDay(r.Context(), req.Day)
	if err != nil {
		writeError(w, "select day", err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// ExpandAll handles POST /api/selection/days/expand.
func (h *Handler) ExpandAll(w http.ResponseWriter, r *http.Request) {
	sel, err := h.svc.ExpandAllDays(r.Context())
	if err != nil {
		writeError(w, "expand days", err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// CollapseAll handles POST /api/selection/days/collapse.
func (h *Handler) CollapseAll(w http.ResponseWriter, r *http.Request) {
	sel, err := h.svc.CollapseAllDays(r.Context())
	if err != nil {
		writeError(w, "collapse days", err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// ToggleDay handles POST /api/selection/days/{day}/toggle. {day} is the
// day number, not its index.
func (h *Handler) ToggleDay(w http.ResponseWriter, r *http.Request) {
	n, ok := intParam(w, r, "day")
	if !ok {
		return
	}
	sel, err := h.svc.ToggleDay(r.Context(), n)
	if err != nil {
		writeError(w, "toggle day", err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}
