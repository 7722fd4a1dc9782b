package api

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/itinera/internal/models"
	"github.com/starford/itinera/internal/planner"
	"github.com/starford/itinera/internal/selection"
)

// GenerateRequest is the request body for generating an itinerary.
type GenerateRequest struct {
	Prompt string `json:"prompt" example:"Plan a 3-day trip to Paris" validate:"required"`
}

func (r GenerateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Prompt, validation.By(func(any) error {
			if strings.TrimSpace(r.Prompt) == "" {
				return validation.NewError("validation_required", "cannot be blank")
			}
			return nil
		}), validation.Length(0, 4000)),
	)
}

// ReorderRequest moves the activity at From to To within one day.
type ReorderRequest struct {
	From *int `json:"from" example:"0" validate:"required"`
	To   *int `json:"to" example:"2" validate:"required"`
}

func (r ReorderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.From, validation.NotNil, validation.Min(0)),
		validation.Field(&r.To, validation.NotNil, validation.Min(0)),
	)
}

// MoveRequest moves an activity to To within its day.
type MoveRequest struct {
	To *int `json:"to" example:"0" validate:"required"`
}

func (r MoveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.To, validation.NotNil, validation.Min(0)),
	)
}

// SelectActivityRequest highlights one activity.
type SelectActivityRequest struct {
	ID string `json:"id" validate:"required"`
}

func (r SelectActivityRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.ID, validation.Required))
}

// SelectDayRequest sets the day filter; 0 means all days.
type SelectDayRequest struct {
	Day int `json:"day" example:"2"`
}

func (r SelectDayRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Day, validation.Min(0)))
}

// ActivityPatchRequest wraps models.ActivityPatch so the decoder validates it.
type ActivityPatchRequest struct {
	models.ActivityPatch
}

func (r ActivityPatchRequest) Validate() error {
	if r.Empty() {
		return validation.NewError("validation_empty_patch", "no fields to update")
	}
	return r.ActivityPatch.Validate()
}

// ActivityRequest is the body for adding an activity.
type ActivityRequest struct {
	models.Activity
}

func (r ActivityRequest) Validate() error { return r.Activity.Validate() }

// DocumentResponse is an itinerary with its revision.
type DocumentResponse = planner.Document

// RemoveResponse is returned after deleting an activity.
type RemoveResponse struct {
	planner.Document
	Removed models.Activity `json:"removed"`
}

// SaveResponse is returned after a successful save.
type SaveResponse struct {
	SavedAt string `json:"savedAt" example:"2025-11-01T10:00:00.000Z"`
}

// LoadResponse reports whether a saved itinerary was installed.
type LoadResponse struct {
	Loaded    bool              `json:"loaded"`
	Itinerary *models.Itinerary `json:"itinerary,omitempty"`
	Revision  string            `json:"revision,omitempty"`
	SavedAt   string            `json:"savedAt,omitempty"`
}

// SelectionResponse wraps the selection state.
type SelectionResponse = selection.State

// DistanceResponse is the great-circle distance between two points.
type DistanceResponse struct {
	Km    float64 `json:"km" example:"3.2"`
	Label string  `json:"label" example:"3.2 km"`
}
