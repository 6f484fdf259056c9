package mux

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"bookbinder/internal/chapters"
	"bookbinder/internal/identify"
)

// Container description tags cap out around this on most players.
const maxDescriptionBytes = 255

// metadataEscaper handles the FFMETADATA1 escape set.
var metadataEscaper = strings.NewReplacer(
	`\`, `\\`,
	`=`, `\=`,
	`;`, `\;`,
	`#`, `\#`,
	"\n", `\`+"\n",
)

// tagPair keeps metadata emission ordered and deterministic.
type tagPair struct {
	key   string
	value string
}

// containerTags maps a resolved identity onto the container's tag set.
// Narrator rides in both composer and a human-readable comment.
func containerTags(id identify.Identity) []tagPair {
	tags := []tagPair{
		{"title", id.Title.Value},
		{"album", id.Title.Value},
		{"artist", id.Author.Value},
		{"album_artist", id.Author.Value},
		{"genre", id.Genre.Value},
		{"date", id.Year.Value},
	}
	if id.Narrator.IsSet() {
		tags = append(tags,
			tagPair{"composer", id.Narrator.Value},
			tagPair{"comment", "Narrated by " + id.Narrator.Value},
		)
	}
	if id.Series.IsSet() {
		tags = append(tags, tagPair{"show", id.Series.Value})
		if id.SeriesPart.IsSet() {
			tags = append(tags, tagPair{"episode_id", id.SeriesPart.Value})
		}
	}
	if id.Description.IsSet() {
		tags = append(tags, tagPair{"description", truncateBytes(id.Description.Value, maxDescriptionBytes)})
	}

	kept := tags[:0]
	for _, tag := range tags {
		if strings.TrimSpace(tag.value) != "" {
			kept = append(kept, tag)
		}
	}
	return kept
}

// renderFFMetadata produces the ;FFMETADATA1 document carrying the global
// tags and one [CHAPTER] block per planned chapter.
func renderFFMetadata(id identify.Identity, plan chapters.Plan) string {
	var b strings.Builder
	b.WriteString(";FFMETADATA1\n")
	for _, tag := range containerTags(id) {
		fmt.Fprintf(&b, "%s=%s\n", tag.key, metadataEscaper.Replace(tag.value))
	}
	for _, ch := range plan.Chapters {
		b.WriteString("[CHAPTER]\n")
		b.WriteString("TIMEBASE=1/1000\n")
		fmt.Fprintf(&b, "START=%d\n", ch.StartMillis)
		fmt.Fprintf(&b, "END=%d\n", ch.EndMillis)
		fmt.Fprintf(&b, "title=%s\n", metadataEscaper.Replace(ch.Title))
	}
	return b.String()
}

// renderConcatList produces the ffconcat input list. Single quotes inside
// paths use the shell-style '\'' escape the concat demuxer expects.
func renderConcatList(files []string) string {
	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	for _, file := range files {
		escaped := strings.ReplaceAll(file, `'`, `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}
	return b.String()
}

// truncateBytes cuts s to at most n bytes without splitting a UTF-8
// sequence.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
