package identify

import "context"

// applyEmbeddedTags reads the first audio file's container tags and merges
// them at embedded-tag priority. Probe failures are swallowed; embedded tags
// are one heuristic among many.
func (r *Resolver) applyEmbeddedTags(ctx context.Context, id *Identity, firstFile string) {
	if r.probe == nil || firstFile == "" {
		return
	}
	result, err := r.probe(ctx, r.probeBinary, firstFile)
	if err != nil {
		return
	}

	id.Author.Set(result.FirstTag("artist", "album_artist", "composer", "performer"), SourceEmbeddedTag)
	id.Title.Set(result.FirstTag("title", "album"), SourceEmbeddedTag)
	id.Narrator.Set(result.Tag("composer"), SourceEmbeddedTag)
	id.Series.Set(result.Tag("show"), SourceEmbeddedTag)
	id.SeriesPart.Set(result.Tag("episode_id"), SourceEmbeddedTag)
	id.Year.Set(result.Tag("date"), SourceEmbeddedTag)
	id.Genre.Set(result.Tag("genre"), SourceEmbeddedTag)
}
