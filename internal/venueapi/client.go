package venueapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/angeloszaimis/delivery-pricing/internal/pricing"
)

// ErrPayload marks a structurally invalid upstream payload, as opposed to a
// transport or HTTP-level failure. Callers distinguish the two with errors.Is.
var ErrPayload = errors.New("invalid upstream payload")

// Roles partition pooled connections by the endpoint they serve.
const (
	RoleStatic  = "static"
	RoleDynamic = "dynamic"
)

// Client fetches venue data from the upstream API. It carries no connection
// of its own: callers pass the *http.Client to use, so pooled connections
// can be round-robined across requests.
type Client struct {
	baseURL string
}

func New(baseURL string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/")}
}

// VenueURL returns the upstream URL for a venue's static or dynamic data.
// The pool health sweep probes these same paths.
func (c *Client) VenueURL(venueSlug, role string) string {
	return fmt.Sprintf("%s/venues/%s/%s", c.baseURL, venueSlug, role)
}

// FetchStatic retrieves and validates a venue's coordinates. Transport
// failures and non-200 responses come back as plain errors; malformed
// payloads are wrapped with ErrPayload.
func (c *Client) FetchStatic(ctx context.Context, httpClient *http.Client, venueSlug string) (Coordinates, error) {
	body, err := c.get(ctx, httpClient, c.VenueURL(venueSlug, RoleStatic))
	if err != nil {
		return Coordinates{}, err
	}

	var payload staticPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrPayload, err)
	}

	if payload.VenueRaw == nil {
		return Coordinates{}, fmt.Errorf("%w: missing venue_raw in static data", ErrPayload)
	}
	if payload.VenueRaw.Location == nil {
		return Coordinates{}, fmt.Errorf("%w: missing location in venue_raw", ErrPayload)
	}

	coords := payload.VenueRaw.Location.Coordinates
	if len(coords) != 2 {
		return Coordinates{}, fmt.Errorf("%w: invalid or missing coordinates", ErrPayload)
	}

	lon, lat := coords[0], coords[1]
	if err := pricing.ValidateCoordinates(lat, lon); err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrPayload, err)
	}

	return Coordinates{Lat: lat, Lon: lon}, nil
}

// FetchDynamic retrieves and validates a venue's delivery pricing spec.
func (c *Client) FetchDynamic(ctx context.Context, httpClient *http.Client, venueSlug string) (pricing.Spec, error) {
	body, err := c.get(ctx, httpClient, c.VenueURL(venueSlug, RoleDynamic))
	if err != nil {
		return pricing.Spec{}, err
	}

	var payload dynamicPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return pricing.Spec{}, fmt.Errorf("%w: %v", ErrPayload, err)
	}

	if payload.VenueRaw == nil {
		return pricing.Spec{}, fmt.Errorf("%w: missing venue_raw in dynamic data", ErrPayload)
	}
	specs := payload.VenueRaw.DeliverySpecs
	if specs == nil {
		return pricing.Spec{}, fmt.Errorf("%w: missing delivery_specs", ErrPayload)
	}
	if specs.OrderMinimumNoSurcharge == nil {
		return pricing.Spec{}, fmt.Errorf("%w: missing order_minimum_no_surcharge", ErrPayload)
	}
	dp := specs.DeliveryPricing
	if dp == nil {
		return pricing.Spec{}, fmt.Errorf("%w: missing delivery_pricing", ErrPayload)
	}
	if dp.BasePrice == nil {
		return pricing.Spec{}, fmt.Errorf("%w: missing base_price", ErrPayload)
	}
	if len(dp.DistanceRanges) == 0 {
		return pricing.Spec{}, fmt.Errorf("%w: missing distance_ranges", ErrPayload)
	}

	spec := pricing.Spec{
		BasePrice:               *dp.BasePrice,
		OrderMinimumNoSurcharge: *specs.OrderMinimumNoSurcharge,
		DistanceRanges:          make([]pricing.DistanceRange, 0, len(dp.DistanceRanges)),
	}
	for _, rng := range dp.DistanceRanges {
		spec.DistanceRanges = append(spec.DistanceRanges, pricing.DistanceRange{
			Min: rng.Min,
			Max: rng.Max,
			A:   rng.A,
			B:   rng.B,
		})
	}

	return spec, nil
}

func (c *Client) get(ctx context.Context, httpClient *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status: %d", res.StatusCode)
	}

	return io.ReadAll(res.Body)
}
