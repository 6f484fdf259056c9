// Package identify resolves a book's identity from the heuristics available
// on disk.
//
// Resolution is a cascade of sources with a strict priority order: user
// input, directory name, cover.txt sidecar, filename patterns, embedded
// container tags, parent-directory hints, online lookup, and finally
// defaults. Each identity field remembers which source set it, and a source
// can only overwrite fields set by a strictly lower-priority source. The
// cascade is deliberately tolerant: every stage is best-effort and a book is
// only rejected when author or title remain unknown after all stages.
package identify
