// Package convert owns the per-book conversion lifecycle: inventory,
// identity resolution, cover art, chapter planning, the supervised mux,
// library filing, and the guarded cleanup of originals. The batch runner
// drives it sequentially over every discovered book directory.
package convert
