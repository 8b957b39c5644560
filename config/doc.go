// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the application configuration structure
// including server settings, balancer topology, per-instance limits, upstream
// API endpoints, and health check intervals.
package config
