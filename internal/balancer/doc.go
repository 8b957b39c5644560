// Package balancer routes client requests across the pricing instances. It
// keeps one persistent HTTP client per instance, maintains the healthy
// subset through a periodic probe loop, and round-robins forwarded requests
// over whatever that subset currently is. Responses are relayed verbatim:
// the instance's status code and body pass through unmodified.
package balancer
