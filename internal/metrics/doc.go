// Package metrics provides real-time metrics collection for the balancer.
//
// It uses a channel-based event pipeline to asynchronously collect metrics
// about request counts, instance selection frequencies, response times with
// percentile calculations (P50, P95, P99), HTTP status code distribution,
// and instance health tracking.
//
// The collector runs in a dedicated goroutine and processes events without
// blocking the request path. Events are sent via a buffered channel with
// non-blocking semantics, and drained on shutdown so late events are not
// lost.
package metrics
