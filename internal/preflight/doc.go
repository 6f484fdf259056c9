// Package preflight provides readiness checks for the binaries, paths,
// and disk space a conversion batch depends on.
//
// The convert command runs RunAll once before the traversal starts; a
// failed check halts the batch early rather than discovering the problem
// hours into a mux. The deps CLI command reuses the same checks for
// display.
package preflight
