package identify

import (
	"path/filepath"
	"regexp"
	"strings"
)

// patternMatcher is a pure function over a filename stem. Matchers are tried
// in priority order; the first accepting match wins and the cascade stops.
type patternMatcher struct {
	name string
	re   *regexp.Regexp
	// build maps the submatches to identity fields. It may reject a
	// structural match (for example an all-digit "author", which really
	// marks a numbered collection) so later patterns get a chance.
	build func(m []string) (Partial, bool)
}

// Precompiled filename shapes, most specific first. All operate on the
// extension-stripped base name of the first audio file.
var filenamePatterns = []patternMatcher{
	{
		name: "author-title-year",
		re:   regexp.MustCompile(`^(.+?)\s*-\s*(.+?)\s*-\s*(\d{4})$`),
		build: func(m []string) (Partial, bool) {
			if isAllDigits(m[1]) {
				return Partial{}, false
			}
			return Partial{Author: m[1], Title: m[2], Year: m[3]}, true
		},
	},
	{
		name: "author-series#-title",
		re:   regexp.MustCompile(`^(.+?)\s*-\s*(.+?)\s+(\d+)\s*-\s*(.+)$`),
		build: func(m []string) (Partial, bool) {
			if isAllDigits(m[1]) || spansSeparator(m[2]) {
				return Partial{}, false
			}
			return Partial{Author: m[1], Series: m[2], SeriesPart: m[3], Title: m[4]}, true
		},
	},
	{
		name: "author-series-book-n-title",
		re:   regexp.MustCompile(`(?i)^(.+?)\s*-\s*(.+?)\s*-\s*Book\s+(\d+)\s*-\s*(.+)$`),
		build: func(m []string) (Partial, bool) {
			if isAllDigits(m[1]) {
				return Partial{}, false
			}
			return Partial{Author: m[1], Series: m[2], SeriesPart: m[3], Title: m[4]}, true
		},
	},
	{
		name: "title-author-narrator",
		re:   regexp.MustCompile(`(?i)^(.+?)\s*-\s*(.+?)\s*-\s*(?:read by|narrated by)\s+(.+)$`),
		build: func(m []string) (Partial, bool) {
			return Partial{Title: m[1], Author: m[2], Narrator: m[3]}, true
		},
	},
	{
		name: "title-year-author",
		re:   regexp.MustCompile(`^(.+?)\s*-\s*(\d{4})\s*-\s*(.+)$`),
		build: func(m []string) (Partial, bool) {
			if isAllDigits(m[1]) {
				return Partial{}, false
			}
			return Partial{Title: m[1], Year: m[2], Author: m[3]}, true
		},
	},
	{
		name: "author-series-book-n-title-underscored",
		re:   regexp.MustCompile(`(?i)^(.+?)_(.+?)_Book[_ ](\d+)_(.+)$`),
		build: func(m []string) (Partial, bool) {
			return Partial{
				Author:     underscoresToSpaces(m[1]),
				Series:     underscoresToSpaces(m[2]),
				SeriesPart: m[3],
				Title:      underscoresToSpaces(m[4]),
			}, true
		},
	},
	{
		name: "title-the-series-n-author",
		re:   regexp.MustCompile(`(?i)^(.+?)\s*-\s*(The\s+.+?)\s+(\d+)\s*-\s*(.+)$`),
		build: func(m []string) (Partial, bool) {
			if spansSeparator(m[2]) {
				return Partial{}, false
			}
			return Partial{Title: m[1], Series: m[2], SeriesPart: m[3], Author: m[4]}, true
		},
	},
	{
		name: "numbered-collection",
		re:   regexp.MustCompile(`^(\d+)\s*-\s*(.+?)\s*-\s*(.+?)(?:\s*-\s*(\d{4}))?$`),
		build: func(m []string) (Partial, bool) {
			return Partial{SeriesPart: m[1], Title: m[2], Author: m[3], Year: m[4]}, true
		},
	},
}

// MatchFilename runs the filename pattern cascade against the given audio
// file path. Returns the partial identity, the matching pattern's name, and
// whether any pattern matched.
func MatchFilename(path string) (Partial, string, bool) {
	base := filepath.Base(path)
	stem := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		return Partial{}, "", false
	}
	for _, matcher := range filenamePatterns {
		m := matcher.re.FindStringSubmatch(stem)
		if m == nil {
			continue
		}
		partial, ok := matcher.build(m)
		if !ok {
			continue
		}
		trimPartial(&partial)
		return partial, matcher.name, true
	}
	return Partial{}, "", false
}

func trimPartial(p *Partial) {
	p.Title = strings.TrimSpace(p.Title)
	p.Author = strings.TrimSpace(p.Author)
	p.Narrator = strings.TrimSpace(p.Narrator)
	p.Series = strings.TrimSpace(p.Series)
	p.SeriesPart = strings.TrimSpace(p.SeriesPart)
	p.Year = strings.TrimSpace(p.Year)
}

func underscoresToSpaces(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(value, "_", " "))
}

// spansSeparator reports whether a captured field swallowed a " - "
// separator, which means the shape decomposed the name incorrectly.
func spansSeparator(value string) bool {
	return strings.Contains(value, " - ")
}

func isAllDigits(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
