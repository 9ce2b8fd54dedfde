// Package telemetry holds the ambient observability for the runtime:
// Prometheus dispatch metrics fed by a Store observer, and the slog logger
// the CLI installs.
package telemetry
