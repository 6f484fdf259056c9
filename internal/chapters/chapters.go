package chapters

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bookbinder/internal/media/ffprobe"
	"bookbinder/internal/services"
	"bookbinder/internal/textutil"
)

// Chapter is one entry in the planned chapter list. Offsets are
// milliseconds from the start of the assembled file.
type Chapter struct {
	Title       string
	StartMillis int64
	EndMillis   int64
	SourceFile  string
}

// Plan is the full chapter layout for one book.
type Plan struct {
	Chapters    []Chapter
	TotalMillis int64
}

// leadingIndex strips "01 - ", "01.", "01_" style track prefixes.
var leadingIndex = regexp.MustCompile(`^\d+\s*[-._]\s*`)

var titleCaser = cases.Title(language.English)

// Build probes every input file and lays chapters out back to back. A file
// whose duration cannot be determined still gets a chapter; it simply
// contributes zero length.
func Build(ctx context.Context, probe ffprobe.Inspector, binary string, files []string) (Plan, error) {
	if len(files) == 0 {
		return Plan{}, services.Wrap(services.ErrNoAudioFiles, "chapters", "build", "no input files to plan", nil)
	}
	if probe == nil {
		probe = ffprobe.Inspect
	}

	plan := Plan{Chapters: make([]Chapter, 0, len(files))}
	var offset int64
	for i, file := range files {
		var millis int64
		if result, err := probe(ctx, binary, file); err == nil {
			millis = int64(result.DurationSeconds() * 1000)
		}
		plan.Chapters = append(plan.Chapters, Chapter{
			Title:       TitleFor(file, i+1),
			StartMillis: offset,
			EndMillis:   offset + millis,
			SourceFile:  file,
		})
		offset += millis
	}
	plan.TotalMillis = offset
	return plan, nil
}

// TitleFor derives a chapter title from a file name. Bare track numbers
// become "Chapter N"; anything else is the cleaned, title-cased stem.
func TitleFor(file string, position int) string {
	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	stem = strings.TrimSpace(leadingIndex.ReplaceAllString(stem, ""))
	stem = strings.ReplaceAll(stem, "_", " ")
	stem = textutil.CollapseWhitespace(stem)

	if stem == "" || isNumeric(stem) {
		return fmt.Sprintf("Chapter %d", position)
	}
	return titleCaser.String(stem)
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
