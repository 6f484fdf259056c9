package library

import (
	"path/filepath"
	"strings"

	"bookbinder/internal/identify"
	"bookbinder/internal/textutil"
)

// Fallback bucket for books no rule claims.
const CategoryUnsorted = "Unsorted"

// categoryRule matches genre text by case-insensitive substring and
// resolves the category path, which may itself depend on the genre text.
type categoryRule struct {
	keywords []string
	resolve  func(genre string) string
}

func staticPath(path string) func(string) string {
	return func(string) string { return path }
}

// historicalPath splits the historical bucket on whether the genre text
// claims to be fiction.
func historicalPath(genre string) string {
	if strings.Contains(genre, "fiction") {
		return "Fiction/Historical"
	}
	return "NonFiction/History"
}

// Ordered: the first matching rule wins, so specific genres sit above the
// historical split and the generic fiction catch-alls.
var categoryRules = []categoryRule{
	{[]string{"fantasy"}, staticPath("Fiction/Fantasy")},
	{[]string{"science fiction", "sci-fi", "scifi"}, staticPath("Fiction/ScienceFiction")},
	{[]string{"mystery", "thriller", "crime"}, staticPath("Fiction/Mystery&Thriller")},
	{[]string{"histor"}, historicalPath},
	{[]string{"romance"}, staticPath("Fiction/Romance")},
	{[]string{"biography", "memoir", "autobiography"}, staticPath("NonFiction/Biography")},
	{[]string{"science"}, staticPath("NonFiction/Science")},
	{[]string{"self-help", "self help"}, staticPath("NonFiction/SelfHelp")},
	{[]string{"business", "economics"}, staticPath("NonFiction/Business")},
	{[]string{"children", "kids", "juvenile"}, staticPath("Children")},
}

// CategoryPath resolves the library-relative category for an identity.
// A known series always files under Series/<name>; otherwise the genre
// table decides.
func CategoryPath(id identify.Identity) string {
	if id.Series.IsSet() {
		return filepath.Join("Series", textutil.SanitizeFileName(id.Series.Value))
	}

	genre := strings.ToLower(strings.TrimSpace(id.Genre.Value))
	if genre == "" {
		return CategoryUnsorted
	}
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(genre, keyword) {
				return rule.resolve(genre)
			}
		}
	}
	if strings.Contains(genre, "non-fiction") || strings.Contains(genre, "nonfiction") {
		return "NonFiction/General"
	}
	if strings.Contains(genre, "fiction") {
		return "Fiction/General"
	}
	return CategoryUnsorted
}

// OutputFileName builds "<Author> - [<Series> <N> - ]<Title>.m4b" from the
// sanitized identity fields.
func OutputFileName(id identify.Identity) string {
	var parts []string
	parts = append(parts, textutil.SanitizeFileName(id.Author.Value))
	if id.Series.IsSet() {
		series := textutil.SanitizeFileName(id.Series.Value)
		if id.SeriesPart.IsSet() {
			series += " " + textutil.SanitizeFileName(id.SeriesPart.Value)
		}
		parts = append(parts, series)
	}
	parts = append(parts, textutil.SanitizeFileName(id.Title.Value))
	return strings.Join(parts, " - ") + ".m4b"
}

// DestinationDir is the directory the artifact files into: the category
// path plus an author subfolder when the author is known.
func DestinationDir(root string, id identify.Identity) string {
	dir := filepath.Join(root, CategoryPath(id))
	if id.Author.IsSet() && id.Author.Value != identify.UnknownAuthor {
		dir = filepath.Join(dir, textutil.SanitizeFileName(id.Author.Value))
	}
	return dir
}
