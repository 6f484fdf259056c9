package identify

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// sidecarName is the free-text metadata sidecar searched for in each book
// directory.
const sidecarName = "cover.txt"

// sidecarRecord carries sidecar fields beyond the shared Partial subset.
type sidecarRecord struct {
	Partial
	Genre       string
	Description string
}

// readSidecar parses the `Key: value` lines of a cover.txt sidecar when one
// exists. Unknown keys and malformed lines are ignored. The second return
// reports whether a sidecar was found.
func readSidecar(dir string) (sidecarRecord, bool) {
	path := filepath.Join(dir, sidecarName)
	file, err := os.Open(path)
	if err != nil {
		return sidecarRecord{}, false
	}
	defer file.Close()

	var record sidecarRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "title":
			record.Title = value
		case "author":
			record.Author = value
		case "narrator":
			record.Narrator = value
		case "series":
			record.Series = value
		case "book":
			record.SeriesPart = value
		case "year":
			record.Year = value
		case "genre":
			record.Genre = value
		case "description":
			record.Description = value
		}
	}
	if err := scanner.Err(); err != nil {
		return sidecarRecord{}, false
	}
	return record, true
}
