package identify

import (
	"regexp"
	"strings"
)

// numberedCollection matches the "N - Title - Author - Year" shape used by
// numbered anthology rips.
var numberedCollection = regexp.MustCompile(`^\d+\s*-\s*(.+?)\s*-\s*(.+?)\s*-\s*(\d{4})$`)

// ParseDirectoryName extracts identity fields from a book directory's base
// name. Recognized shapes, tried in order:
//
//	N - Title - Author - Year
//	Author - Series - Title
//	Author - Title
//
// A 2-segment title ending in a series-indicator word is reinterpreted as
// the series name, with a synthesized "<series> Complete Series" title.
func ParseDirectoryName(name string) (Partial, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Partial{}, false
	}

	if m := numberedCollection.FindStringSubmatch(name); m != nil {
		return Partial{
			Title:  strings.TrimSpace(m[1]),
			Author: strings.TrimSpace(m[2]),
			Year:   m[3],
		}, true
	}

	segments := splitSegments(name)
	switch len(segments) {
	case 3:
		return Partial{
			Author: segments[0],
			Series: segments[1],
			Title:  segments[2],
		}, true
	case 2:
		author, title := segments[0], segments[1]
		if LooksLikeSeries(title) {
			return Partial{
				Author: author,
				Series: title,
				Title:  CompleteSeriesTitle(title),
			}, true
		}
		return Partial{Author: author, Title: title}, true
	default:
		return Partial{}, false
	}
}

func splitSegments(name string) []string {
	raw := strings.Split(name, " - ")
	segments := make([]string, 0, len(raw))
	for _, seg := range raw {
		if seg = strings.TrimSpace(seg); seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}
