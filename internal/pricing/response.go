package pricing

import "fmt"

// Sanity caps carried over from the original service limits.
const (
	maxDeliveryFee = 1500000 // 15000 EUR in cents
	maxDistanceM   = 2000000 // 2000 km
)

// Delivery holds the delivery-specific part of a price response.
type Delivery struct {
	Fee      int `json:"fee"`
	Distance int `json:"distance"`
}

// Response is the successful delivery order price breakdown. Build it with
// NewResponse so the component-sum invariant is enforced at construction.
type Response struct {
	TotalPrice          int      `json:"total_price"`
	SmallOrderSurcharge int      `json:"small_order_surcharge"`
	CartValue           int      `json:"cart_value"`
	Delivery            Delivery `json:"delivery"`
}

// NewResponse assembles a price response and verifies its invariants:
// total_price must equal cart_value + fee + surcharge, fee and distance must
// be positive and within sanity caps, surcharge must be non-negative. A
// violation means a bug upstream of response assembly, reported as an error
// rather than silently recomputed.
func NewResponse(cartValue, fee, surcharge, distance int) (Response, error) {
	if cartValue <= 0 {
		return Response{}, fmt.Errorf("cart value must be positive, got %d", cartValue)
	}
	if fee <= 0 {
		return Response{}, fmt.Errorf("delivery fee must be positive, got %d", fee)
	}
	if fee > maxDeliveryFee {
		return Response{}, fmt.Errorf("delivery fee %d exceeds maximum allowed value", fee)
	}
	if surcharge < 0 {
		return Response{}, fmt.Errorf("small order surcharge cannot be negative, got %d", surcharge)
	}
	if distance <= 0 {
		return Response{}, fmt.Errorf("distance must be positive, got %d", distance)
	}
	if distance > maxDistanceM {
		return Response{}, fmt.Errorf("distance %d exceeds maximum allowed value", distance)
	}

	total := TotalPrice(cartValue, fee, surcharge)
	if total != cartValue+fee+surcharge {
		return Response{}, fmt.Errorf("total price %d does not match component sum", total)
	}

	return Response{
		TotalPrice:          total,
		SmallOrderSurcharge: surcharge,
		CartValue:           cartValue,
		Delivery: Delivery{
			Fee:      fee,
			Distance: distance,
		},
	}, nil
}
