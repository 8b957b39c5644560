package venueapi

// Coordinates is a venue's geographic location.
type Coordinates struct {
	Lat float64
	Lon float64
}

// staticPayload mirrors the venue static endpoint response. Only the fields
// the pricing pipeline needs are declared; pointers make missing sections
// detectable.
type staticPayload struct {
	VenueRaw *struct {
		Location *struct {
			// GeoJSON order: [longitude, latitude].
			Coordinates []float64 `json:"coordinates"`
		} `json:"location"`
	} `json:"venue_raw"`
}

// dynamicPayload mirrors the venue dynamic endpoint response.
type dynamicPayload struct {
	VenueRaw *struct {
		DeliverySpecs *struct {
			OrderMinimumNoSurcharge *int `json:"order_minimum_no_surcharge"`
			DeliveryPricing         *struct {
				BasePrice      *int `json:"base_price"`
				DistanceRanges []struct {
					Min int `json:"min"`
					Max int `json:"max"`
					A   int `json:"a"`
					B   int `json:"b"`
				} `json:"distance_ranges"`
			} `json:"delivery_pricing"`
		} `json:"delivery_specs"`
	} `json:"venue_raw"`
}
