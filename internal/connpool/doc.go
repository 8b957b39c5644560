// Package connpool maintains fixed-size pools of long-lived upstream HTTP
// connections, one pool per upstream role (static venue data, dynamic
// pricing data). Slots are handed out round-robin and never checked out: a
// request uses whichever client sits at the cursor, while a background sweep
// probes each slot on an interval and replaces failing ones in place.
//
// The read path deliberately skips health checks. A request may hit a stale
// slot in the window before the sweep replaces it; that surfaces as a
// transient upstream failure and keeps Acquire free of blocking and I/O.
package connpool
