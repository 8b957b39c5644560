// Package instance models one supervised pricing service instance and the
// supervisor that runs a fleet of them inside the balancer process. Each
// instance keeps its own listener, connection pool, and admission gate, so
// instances remain independent failure domains even though they share a
// process.
package instance
