package discover

import "path/filepath"

// VisitedSet tracks which book directories a run has already handled,
// keyed by canonical path so symlinked aliases collapse to one entry.
// The sequential traversal is the only mutator; no locking needed.
type VisitedSet struct {
	seen map[string]struct{}
}

// NewVisitedSet returns an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// Canonical resolves path to its symlink-free absolute form. A path that
// cannot be resolved falls back to its absolute form.
func Canonical(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Visit records path and reports whether this is its first visit.
func (v *VisitedSet) Visit(path string) bool {
	key := Canonical(path)
	if _, ok := v.seen[key]; ok {
		return false
	}
	v.seen[key] = struct{}{}
	return true
}

// Len returns how many distinct directories have been visited.
func (v *VisitedSet) Len() int { return len(v.seen) }
