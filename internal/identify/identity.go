package identify

import (
	"regexp"
	"strings"
)

// Provenance identifies the cascade stage that produced a field value.
// Larger values are higher priority; a stage may overwrite a field only when
// its provenance is strictly greater than the field's current one.
type Provenance int

const (
	SourceNone Provenance = iota
	SourceDefault
	SourceOnlineLookup
	SourceParentDirectoryHint
	SourceEmbeddedTag
	SourceFilenamePattern
	SourceSidecar
	SourceDirectoryName
	SourceUserInput
)

// String returns the provenance label used in logs and scan output.
func (p Provenance) String() string {
	switch p {
	case SourceUserInput:
		return "userInput"
	case SourceDirectoryName:
		return "directoryName"
	case SourceSidecar:
		return "sidecar"
	case SourceFilenamePattern:
		return "filenamePattern"
	case SourceEmbeddedTag:
		return "embeddedTag"
	case SourceParentDirectoryHint:
		return "parentDirectoryHint"
	case SourceOnlineLookup:
		return "onlineLookup"
	case SourceDefault:
		return "default"
	default:
		return "none"
	}
}

// Field pairs a resolved value with its provenance.
type Field struct {
	Value  string
	Source Provenance
}

// Set applies value from source, honoring the priority order. Empty values
// never overwrite anything. Reports whether the field changed.
func (f *Field) Set(value string, source Provenance) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if source <= f.Source {
		return false
	}
	f.Value = value
	f.Source = source
	return true
}

// IsSet reports whether the field holds a value.
func (f Field) IsSet() bool {
	return f.Value != ""
}

// Identity is the best-effort metadata record for one book.
type Identity struct {
	Title       Field
	Author      Field
	Narrator    Field
	Series      Field
	SeriesPart  Field
	Year        Field
	Genre       Field
	Description Field

	// CoverURL is supplied by the online lookup when no local cover exists.
	// It carries no provenance; it is a hint for the orchestrator, not an
	// identity field.
	CoverURL string
}

// Partial is the output of a single pattern matcher: whatever subset of
// fields the pattern could extract.
type Partial struct {
	Title      string
	Author     string
	Narrator   string
	Series     string
	SeriesPart string
	Year       string
}

// apply merges a partial into the identity at the given provenance.
func (id *Identity) apply(p Partial, source Provenance) {
	id.Title.Set(p.Title, source)
	id.Author.Set(p.Author, source)
	id.Narrator.Set(p.Narrator, source)
	id.Series.Set(p.Series, source)
	id.SeriesPart.Set(p.SeriesPart, source)
	id.Year.Set(p.Year, source)
}

// Sufficient reports whether the record can drive a conversion.
func (id Identity) Sufficient() bool {
	return id.Author.IsSet() && id.Title.IsSet()
}

// seriesIndicator matches titles that are really series names: a trailing
// indicator word like "Trilogy" or "Cycle". Known false-positive source for
// books whose real title ends in one of these words; kept for compatibility
// with existing library layouts.
var seriesIndicator = regexp.MustCompile(`(?i)\b(Series|Cycle|Trilogy|Universe|Verse)$`)

// LooksLikeSeries reports whether the value ends in a series-indicator word.
func LooksLikeSeries(value string) bool {
	return seriesIndicator.MatchString(strings.TrimSpace(value))
}

// CompleteSeriesTitle synthesizes the default title for a series-only record.
func CompleteSeriesTitle(series string) string {
	return strings.TrimSpace(series) + " Complete Series"
}
