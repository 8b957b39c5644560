package pricing_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angeloszaimis/delivery-pricing/internal/pricing"
)

// helsinkiSpec mirrors the mock venue fixture.
var helsinkiSpec = pricing.Spec{
	BasePrice: 390,
	DistanceRanges: []pricing.DistanceRange{
		{Min: 0, Max: 1000, A: 0, B: 0},
		{Min: 1000, Max: 2000, A: 100, B: 0},
		{Min: 2000, Max: 3000, A: 200, B: 0},
	},
	OrderMinimumNoSurcharge: 1000,
}

func TestDistance(t *testing.T) {
	t.Run("zero for identical points", func(t *testing.T) {
		assert.Equal(t, 0, pricing.Distance(10.5, 20.7, 10.5, 20.7))
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := pricing.Distance(60.17045, 24.93147, 60.17094, 24.93087)
		d2 := pricing.Distance(60.17094, 24.93087, 60.17045, 24.93147)
		assert.Equal(t, d1, d2)
		assert.Positive(t, d1)
	})

	t.Run("helsinki city centre", func(t *testing.T) {
		d := pricing.Distance(60.17045, 24.93147, 60.17094, 24.93087)
		assert.Equal(t, 64, d)
	})

	t.Run("one degree of longitude at the equator", func(t *testing.T) {
		assert.Equal(t, 111195, pricing.Distance(0, 0, 0, 1))
	})
}

func TestDeliveryFee(t *testing.T) {
	tests := []struct {
		name     string
		distance int
		spec     pricing.Spec
		wantFee  int
		wantErr  pricing.RejectReason
		rejected bool
	}{
		{
			name:     "first band",
			distance: 64,
			spec:     helsinkiSpec,
			wantFee:  390,
		},
		{
			name:     "inclusive band boundary matches the earlier band first",
			distance: 1000,
			spec:     helsinkiSpec,
			wantFee:  390,
		},
		{
			name:     "second band adds flat component",
			distance: 1500,
			spec:     helsinkiSpec,
			wantFee:  490,
		},
		{
			name:     "third band",
			distance: 2500,
			spec:     helsinkiSpec,
			wantFee:  590,
		},
		{
			name:     "beyond all bands without a cutoff",
			distance: 3500,
			spec:     helsinkiSpec,
			rejected: true,
			wantErr:  pricing.NoRangeFound,
		},
		{
			name:     "cutoff band rejects at its minimum",
			distance: 500,
			spec: pricing.Spec{
				BasePrice: 199,
				DistanceRanges: []pricing.DistanceRange{
					{Min: 0, Max: 500, A: 0, B: 0},
					{Min: 500, Max: 0, A: 0, B: 0},
				},
			},
			rejected: true,
			wantErr:  pricing.DistanceExceeded,
		},
		{
			name:     "cutoff band short of the distance is skipped",
			distance: 300,
			spec: pricing.Spec{
				BasePrice: 199,
				DistanceRanges: []pricing.DistanceRange{
					{Min: 2000, Max: 0, A: 0, B: 0},
					{Min: 0, Max: 1000, A: 50, B: 0},
				},
			},
			wantFee: 249,
		},
		{
			name:     "per-10-meter component floor divides",
			distance: 1233,
			spec: pricing.Spec{
				BasePrice: 100,
				DistanceRanges: []pricing.DistanceRange{
					{Min: 0, Max: 2000, A: 10, B: 5},
				},
			},
			// 100 + 10 + 5*1233/10 = 110 + 616 (floored from 616.5)
			wantFee: 726,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, err := pricing.DeliveryFee(tt.distance, tt.spec)

			if tt.rejected {
				require.Error(t, err)
				var rej *pricing.Rejection
				require.True(t, errors.As(err, &rej))
				assert.Equal(t, tt.wantErr, rej.Reason)
				assert.Equal(t, tt.distance, rej.Distance)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantFee, fee)
			assert.GreaterOrEqual(t, fee, tt.spec.BasePrice)
		})
	}
}

func TestRejectionMessages(t *testing.T) {
	_, err := pricing.DeliveryFee(3500, pricing.Spec{
		BasePrice: 100,
		DistanceRanges: []pricing.DistanceRange{
			{Min: 0, Max: 1000, A: 0, B: 0},
			{Min: 2000, Max: 0, A: 0, B: 0},
		},
	})
	require.Error(t, err)
	assert.EqualError(t, err, "delivery distance 3500m exceeds maximum allowed distance 2000m")

	_, err = pricing.DeliveryFee(1500, pricing.Spec{
		BasePrice: 100,
		DistanceRanges: []pricing.DistanceRange{
			{Min: 0, Max: 1000, A: 0, B: 0},
		},
	})
	require.Error(t, err)
	assert.EqualError(t, err, "no suitable delivery fee range found for distance 1500m")
}

func TestSmallOrderSurcharge(t *testing.T) {
	tests := []struct {
		name      string
		cartValue int
		minimum   int
		want      int
	}{
		{"below minimum", 500, 1000, 500},
		{"at minimum", 1000, 1000, 0},
		{"above minimum", 1500, 1000, 0},
		{"zero minimum", 500, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pricing.SmallOrderSurcharge(tt.cartValue, tt.minimum))
		})
	}
}

func TestNewResponse(t *testing.T) {
	t.Run("enforces component sum", func(t *testing.T) {
		resp, err := pricing.NewResponse(1000, 390, 0, 64)
		require.NoError(t, err)
		assert.Equal(t, 1390, resp.TotalPrice)
		assert.Equal(t, 1000, resp.CartValue)
		assert.Equal(t, 0, resp.SmallOrderSurcharge)
		assert.Equal(t, 390, resp.Delivery.Fee)
		assert.Equal(t, 64, resp.Delivery.Distance)
		assert.Equal(t, resp.CartValue+resp.Delivery.Fee+resp.SmallOrderSurcharge, resp.TotalPrice)
	})

	t.Run("surcharge counts toward the total", func(t *testing.T) {
		resp, err := pricing.NewResponse(500, 390, 500, 64)
		require.NoError(t, err)
		assert.Equal(t, 1390, resp.TotalPrice)
	})

	t.Run("rejects invalid components", func(t *testing.T) {
		cases := []struct {
			name                           string
			cart, fee, surcharge, distance int
		}{
			{"zero cart", 0, 390, 0, 64},
			{"zero fee", 1000, 0, 0, 64},
			{"negative surcharge", 1000, 390, -1, 64},
			{"zero distance", 1000, 390, 0, 0},
			{"fee above cap", 1000, 1500001, 0, 64},
			{"distance above cap", 1000, 390, 0, 2000001},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				_, err := pricing.NewResponse(c.cart, c.fee, c.surcharge, c.distance)
				assert.Error(t, err)
			})
		}
	})
}

func TestRequestValidate(t *testing.T) {
	valid := pricing.Request{
		VenueSlug: "home-assignment-venue-helsinki",
		CartValue: 1000,
		UserLat:   60.17045,
		UserLon:   24.93147,
	}

	t.Run("accepts a valid request", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("rejects out-of-range and missing fields", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(r *pricing.Request)
		}{
			{"empty venue slug", func(r *pricing.Request) { r.VenueSlug = "" }},
			{"zero cart value", func(r *pricing.Request) { r.CartValue = 0 }},
			{"negative cart value", func(r *pricing.Request) { r.CartValue = -100 }},
			{"latitude above 90", func(r *pricing.Request) { r.UserLat = 95 }},
			{"latitude below -90", func(r *pricing.Request) { r.UserLat = -90.5 }},
			{"longitude above 180", func(r *pricing.Request) { r.UserLon = 181 }},
			{"longitude below -180", func(r *pricing.Request) { r.UserLon = -180.1 }},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				req := valid
				c.mutate(&req)
				assert.Error(t, req.Validate())
			})
		}
	})
}

func TestValidateCoordinates(t *testing.T) {
	assert.NoError(t, pricing.ValidateCoordinates(60.17, 24.93))
	assert.NoError(t, pricing.ValidateCoordinates(-90, 180))
	assert.Error(t, pricing.ValidateCoordinates(95, 0))
	assert.Error(t, pricing.ValidateCoordinates(0, -181))
}
