package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"bookbinder/internal/inventory"
	"bookbinder/internal/services"
)

// Candidates walks root and returns every directory that directly
// contains audio input files or an assembled chaptered file, ordered by
// path. When root itself holds audio, it is the only candidate.
func Candidates(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidInputPath, "discover", "candidates", "resolve input path", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidInputPath, "discover", "candidates", "input path does not exist", err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrInvalidInputPath, "discover", "candidates", "input path is not a directory", nil)
	}

	if holdsAudio(absRoot) {
		return []string{absRoot}, nil
	}

	var candidates []string
	walk := func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || !d.IsDir() || path == absRoot {
			return nil
		}
		if holdsAudio(path) {
			candidates = append(candidates, path)
			// Book directories do not nest; anything below is chapter
			// subfolders or cover art.
			return fs.SkipDir
		}
		return nil
	}
	if err := filepath.WalkDir(absRoot, walk); err != nil {
		return nil, services.Wrap(services.ErrInvalidInputPath, "discover", "candidates", "walk input tree", err)
	}
	sort.Strings(candidates)
	return candidates, nil
}

// holdsAudio checks only the directory's direct children.
func holdsAudio(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if inventory.IsAudioFile(name) || inventory.IsChapteredFile(name) {
			return true
		}
	}
	return false
}
