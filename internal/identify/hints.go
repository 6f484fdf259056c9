package identify

import (
	"path/filepath"
	"strings"
)

// collectionKeywords mark a parent directory as a curated collection whose
// name may carry a genre hint.
var collectionKeywords = []string{"top", "best", "collection", "compilation", "anthology"}

// genreKeywords maps secondary keywords in a collection directory name to a
// genre. Ordered so multi-word genres match before their substrings.
var genreKeywords = []struct {
	keyword string
	genre   string
}{
	{"science fiction", "Science Fiction"},
	{"fantasy", "Fantasy"},
	{"mystery", "Mystery"},
	{"thriller", "Thriller"},
	{"horror", "Horror"},
	{"historical", "Historical"},
}

// parentGenreHint inspects the parent directory name for collection keywords
// and returns a genre inferred from secondary keywords, or "".
func parentGenreHint(bookDir string) string {
	parent := strings.ToLower(filepath.Base(filepath.Dir(bookDir)))
	if parent == "" || parent == "." || parent == string(filepath.Separator) {
		return ""
	}

	collection := false
	for _, keyword := range collectionKeywords {
		if strings.Contains(parent, keyword) {
			collection = true
			break
		}
	}
	if !collection {
		return ""
	}

	for _, entry := range genreKeywords {
		if strings.Contains(parent, entry.keyword) {
			return entry.genre
		}
	}
	return ""
}
