// Package service implements the per-request delivery order pricing
// pipeline: input validation, admission control, pooled upstream fetches,
// and price computation. Every failure is a typed value in a small taxonomy
// so the HTTP layer can map outcomes to status codes without string
// matching.
package service
