// Package tracing wires OpenTelemetry into the wait/notify registries. Spans
// are no-ops until Init or InitWithExporter installs a provider, so callers
// that do not need tracing pay nothing for it.
package tracing
