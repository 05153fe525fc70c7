// Package app wires the application together: configuration, logging,
// telemetry, the user store, outbound clients, services, the router, and
// the HTTP server lifecycle.
package app
