// Package logging provides slog-based structured logging for bookbinder.
//
// It exposes a small facade over log/slog: constructor helpers that honor
// the [logging] config section, attribute helpers shared across packages,
// and context propagation for the per-book fields every pipeline component
// attaches to its log lines.
package logging
