package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks a whole document supplied from outside, such as an
// import. Every activity must pass Activity.Validate.
func (it Itinerary) Validate() error {
	return validation.ValidateStruct(&it,
		validation.Field(&it.Destination, validation.Required),
		validation.Field(&it.Days, validation.Required),
	)
}

func (d Day) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.DayNumber, validation.Min(0)),
		validation.Field(&d.Activities),
	)
}

// Validate checks an activity supplied by a client. Ingested documents are
// not validated; this only guards edits.
func (a Activity) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&a.Cost, validation.Min(0.0)),
		validation.Field(&a.Category, validation.In(categoryValues()...)),
		validation.Field(&a.Coordinates),
	)
}

// Validate checks that both components are present and in range.
func (c Coordinates) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Lat, validation.NotNil, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&c.Lng, validation.NotNil, validation.Min(-180.0), validation.Max(180.0)),
	)
}

// Validate checks the fields a patch would write.
func (p ActivityPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&p.Cost, validation.Min(0.0)),
		validation.Field(&p.Category, validation.NilOrNotEmpty, validation.In(categoryValues()...)),
		validation.Field(&p.Coordinates),
	)
}

func categoryValues() []interface{} {
	out := make([]interface{}, len(Categories))
	for i, c := range Categories {
		out[i] = c
	}
	return out
}
