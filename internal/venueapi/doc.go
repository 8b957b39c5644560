// Package venueapi is the client for the external venue-data API. The API is
// an opaque dependency with no schema control on our side, so payloads are
// parsed defensively: required fields must be present with the right types,
// and any shape deviation is reported as ErrPayload rather than defaulted.
package venueapi
