package inventory

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sys/unix"
)

// audioExtensions is the recognized input whitelist. Chaptered containers
// (.m4b) are tracked separately: a single one marks the directory as
// already assembled, while several loose ones are parts to merge.
var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".m4a":  {},
	".aac":  {},
	".ogg":  {},
	".opus": {},
	".flac": {},
	".wav":  {},
	".wma":  {},
}

const chapteredExtension = ".m4b"

// IsAudioFile reports whether name carries a recognized input extension.
func IsAudioFile(name string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// IsChapteredFile reports whether name is an already-assembled container.
func IsChapteredFile(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == chapteredExtension
}

// Inventory holds the ordered audio contents of one book directory.
type Inventory struct {
	Dir string
	// Files holds absolute paths of recognized audio inputs, sorted
	// lexicographically by name.
	Files []string
	// Chaptered is the path of a pre-existing chaptered container found in
	// the directory, or "" when none exists.
	Chaptered string
}

// Empty reports whether the directory held no recognized audio inputs.
func (inv Inventory) Empty() bool {
	return len(inv.Files) == 0
}

// Scan walks dir (one level, or fully when recursive) and collects audio
// files. Unreadable entries and unrecognized extensions are skipped.
func Scan(dir string, recursive bool) (Inventory, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return Inventory{}, fmt.Errorf("resolve directory: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return Inventory{}, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return Inventory{}, fmt.Errorf("not a directory: %s", absDir)
	}

	inv := Inventory{Dir: absDir}

	type entry struct {
		sortKey string
		path    string
	}
	var entries []entry
	var chaptered []entry

	walk := func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if path != absDir && !recursive {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := audioExtensions[ext]; !ok && ext != chapteredExtension {
			return nil
		}
		if unix.Access(path, unix.R_OK) != nil {
			return nil
		}
		rel, err := filepath.Rel(absDir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		if ext == chapteredExtension {
			chaptered = append(chaptered, entry{sortKey: rel, path: path})
			return nil
		}
		entries = append(entries, entry{sortKey: rel, path: path})
		return nil
	}

	if err := filepath.WalkDir(absDir, walk); err != nil {
		return Inventory{}, fmt.Errorf("scan %s: %w", absDir, err)
	}

	// A lone chaptered container is a finished book; several are loose
	// parts and join the input list.
	if len(chaptered) == 1 {
		inv.Chaptered = chaptered[0].path
	} else {
		entries = append(entries, chaptered...)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].sortKey < entries[j].sortKey })
	for _, e := range entries {
		inv.Files = append(inv.Files, e.path)
	}
	return inv, nil
}

// TotalSize sums the byte sizes of the inventory's input files.
func (inv Inventory) TotalSize() int64 {
	var total int64
	for _, path := range inv.Files {
		if info, err := os.Stat(path); err == nil {
			total += info.Size()
		}
	}
	return total
}
