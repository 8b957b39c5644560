// Package pricing implements the delivery order price calculation:
// great-circle distance between user and venue, distance-banded delivery
// fees, small order surcharges, and total price aggregation.
//
// All monetary values are integers in the lowest denomination of the local
// currency (cents, öre, yen). Distances are integer meters. A distance band
// with max == 0 is a cutoff sentinel: any distance at or beyond its min is
// not deliverable.
package pricing
