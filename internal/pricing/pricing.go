package pricing

import (
	"fmt"
	"math"
)

// earthRadiusM is the mean radius of the Earth in meters.
const earthRadiusM = 6371000

// DistanceRange is one distance band of a delivery pricing spec.
// A and B are the flat and per-10-meter fee components. Max == 0 marks a
// cutoff band: distances >= Min are not deliverable.
type DistanceRange struct {
	Min int
	Max int
	A   int
	B   int
}

// Spec is the venue's delivery pricing specification.
type Spec struct {
	BasePrice               int
	DistanceRanges          []DistanceRange
	OrderMinimumNoSurcharge int
}

// RejectReason identifies why a delivery was rejected by the fee calculation.
type RejectReason int

const (
	DistanceExceeded RejectReason = iota
	NoRangeFound
)

// Rejection is a recoverable pricing outcome: the order is valid but the
// venue does not deliver to the user's location. It is distinct from
// transport faults and surfaces to clients as a 400.
type Rejection struct {
	Reason     RejectReason
	Distance   int
	MaxAllowed int
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case DistanceExceeded:
		return fmt.Sprintf("delivery distance %dm exceeds maximum allowed distance %dm", r.Distance, r.MaxAllowed)
	default:
		return fmt.Sprintf("no suitable delivery fee range found for distance %dm", r.Distance)
	}
}

// Distance returns the great-circle distance between two coordinates in
// meters, rounded to the nearest integer.
func Distance(lat1, lon1, lat2, lon2 float64) int {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dlat := rad(lat2 - lat1)
	dlon := rad(lon2 - lon1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return int(math.Round(earthRadiusM * c))
}

// DeliveryFee scans the spec's distance ranges in order and returns the fee
// for the given distance, or a *Rejection when the venue does not deliver
// that far. A matching band yields base + a + b*distance/10 with integer
// floor division. Bands are matched inclusively on both ends. A cutoff band
// (max == 0) rejects any distance at or beyond its min but does not stop the
// scan when the distance falls short of it.
func DeliveryFee(distance int, spec Spec) (int, error) {
	for _, rng := range spec.DistanceRanges {
		if rng.Max == 0 {
			if distance >= rng.Min {
				return 0, &Rejection{Reason: DistanceExceeded, Distance: distance, MaxAllowed: rng.Min}
			}
			continue
		}

		if rng.Min <= distance && distance <= rng.Max {
			return spec.BasePrice + rng.A + rng.B*distance/10, nil
		}
	}

	return 0, &Rejection{Reason: NoRangeFound, Distance: distance}
}

// SmallOrderSurcharge returns the surcharge owed when the cart value falls
// below the venue's order minimum, zero otherwise.
func SmallOrderSurcharge(cartValue, orderMinimum int) int {
	if cartValue < orderMinimum {
		return orderMinimum - cartValue
	}
	return 0
}

// TotalPrice returns the sum of cart value, delivery fee, and surcharge.
func TotalPrice(cartValue, fee, surcharge int) int {
	return cartValue + fee + surcharge
}

// ValidateCoordinates checks latitude and longitude bounds.
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("invalid latitude: %v, must be between -90 and 90", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("invalid longitude: %v, must be between -180 and 180", lon)
	}
	return nil
}
