// Package ffprobe wraps the external ffprobe tool for container inspection.
//
// It is the pipeline's tag and duration reader: embedded metadata tags and
// stream durations both come from a single Inspect call. ffprobe is treated
// as a black box; failures surface as errors the callers downgrade to empty
// values where the pipeline tolerates them.
package ffprobe
