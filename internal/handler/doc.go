// Package handler implements the HTTP surface of a pricing instance: the
// delivery order price endpoint, its method and parameter handling, and the
// health endpoint probed by the load balancer.
package handler
