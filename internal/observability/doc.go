// Package observability builds the service logger and the Prometheus
// collectors fed by the HTTP layer, the route guards and the Ghost retrier.
package observability
