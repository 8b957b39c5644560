package pricing

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Request is a validated delivery order price query. Construct it, call
// Validate, and only then touch the network.
type Request struct {
	VenueSlug string
	CartValue int
	UserLat   float64
	UserLon   float64
}

func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.VenueSlug,
			validation.Required.Error("venue slug must be a non-empty string"),
		),
		validation.Field(&r.CartValue,
			validation.Required.Error("cart value must be a positive integer"),
			validation.Min(1).Error("cart value must be a positive integer"),
		),
		validation.Field(&r.UserLat,
			validation.Min(-90.0).Error("latitude must be between -90 and 90 degrees"),
			validation.Max(90.0).Error("latitude must be between -90 and 90 degrees"),
		),
		validation.Field(&r.UserLon,
			validation.Min(-180.0).Error("longitude must be between -180 and 180 degrees"),
			validation.Max(180.0).Error("longitude must be between -180 and 180 degrees"),
		),
	)
}
