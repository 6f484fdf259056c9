package identify

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"bookbinder/internal/identify/openlibrary"
	"bookbinder/internal/logging"
	"bookbinder/internal/media/ffprobe"
	"bookbinder/internal/services"
)

// Unknown-field defaults applied in non-interactive mode.
const (
	UnknownAuthor = "Unknown Author"
	UnknownTitle  = "Unknown Title"
)

// Prompter collects a field value from the user during interactive runs.
// Returning an empty string declines to supply the field.
type Prompter interface {
	Prompt(field, suggestion string) (string, error)
}

// Resolver applies the metadata cascade to one book directory.
type Resolver struct {
	probe       ffprobe.Inspector
	probeBinary string
	lookup      openlibrary.Searcher
	prompter    Prompter
	interactive bool
	logger      *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithProbe injects the tag/duration prober (tests use fakes).
func WithProbe(probe ffprobe.Inspector) Option {
	return func(r *Resolver) { r.probe = probe }
}

// WithLookup enables the online metadata lookup stage.
func WithLookup(lookup openlibrary.Searcher) Option {
	return func(r *Resolver) { r.lookup = lookup }
}

// WithPrompter enables the interactive fallback stage.
func WithPrompter(p Prompter) Option {
	return func(r *Resolver) {
		r.prompter = p
		r.interactive = p != nil
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger.With(logging.String(logging.FieldComponent, "identify"))
		}
	}
}

// New constructs a Resolver. probeBinary names the ffprobe executable used
// for the embedded-tag stage.
func New(probeBinary string, opts ...Option) *Resolver {
	r := &Resolver{
		probe:       ffprobe.Inspect,
		probeBinary: probeBinary,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the cascade for one book directory. files is the ordered
// audio inventory; hasLocalCover suppresses the cover-motivated online
// lookup. The returned identity always satisfies Sufficient() unless the
// error is non-nil.
func (r *Resolver) Resolve(ctx context.Context, dir string, files []string, hasLocalCover bool) (Identity, error) {
	logger := logging.WithContext(ctx, r.logger)
	var id Identity

	// 1. Directory name.
	if partial, ok := ParseDirectoryName(filepath.Base(dir)); ok {
		id.apply(partial, SourceDirectoryName)
	}

	// 2. cover.txt sidecar.
	if record, ok := readSidecar(dir); ok {
		id.apply(record.Partial, SourceSidecar)
		id.Genre.Set(record.Genre, SourceSidecar)
		id.Description.Set(record.Description, SourceSidecar)
	}

	// 3. Filename patterns against the first file.
	if len(files) > 0 {
		if partial, pattern, ok := MatchFilename(files[0]); ok {
			logger.Debug("filename pattern matched", logging.String("pattern", pattern))
			id.apply(partial, SourceFilenamePattern)
		}
	}

	// 4. Embedded container tags.
	if len(files) > 0 {
		r.applyEmbeddedTags(ctx, &id, files[0])
	}

	// 5. Parent-directory collection hint.
	id.Genre.Set(parentGenreHint(dir), SourceParentDirectoryHint)

	// 6. Structural special cases.
	r.applyStructuralHints(&id)

	// 7. Interactive or default fallback.
	if err := r.fillMissing(&id); err != nil {
		return id, err
	}
	if !id.Sufficient() {
		return id, services.Wrap(services.ErrMetadataInsufficient, "identify", "resolve",
			"author or title unknown after all stages", nil)
	}

	// 8. Online lookup, only when the record is judged insufficient.
	r.applyOnlineLookup(ctx, &id, hasLocalCover, logger)

	return id, nil
}

// applyStructuralHints handles the Author - Series directory shape and
// series-indicator titles once the other stages have run.
func (r *Resolver) applyStructuralHints(id *Identity) {
	if id.Series.IsSet() && !id.Title.IsSet() {
		id.Title.Set(CompleteSeriesTitle(id.Series.Value), id.Series.Source)
		return
	}
	if id.Author.IsSet() && id.Title.IsSet() && !id.Series.IsSet() && LooksLikeSeries(id.Title.Value) {
		id.Series.Set(id.Title.Value, id.Title.Source)
	}
}

func (r *Resolver) fillMissing(id *Identity) error {
	if id.Author.IsSet() && id.Title.IsSet() {
		return nil
	}
	if r.interactive && r.prompter != nil {
		if !id.Author.IsSet() {
			value, err := r.prompter.Prompt("author", id.Author.Value)
			if err != nil {
				return services.Wrap(services.ErrMetadataInsufficient, "identify", "prompt", "author prompt failed", err)
			}
			id.Author.Set(value, SourceUserInput)
		}
		if !id.Title.IsSet() {
			value, err := r.prompter.Prompt("title", id.Title.Value)
			if err != nil {
				return services.Wrap(services.ErrMetadataInsufficient, "identify", "prompt", "title prompt failed", err)
			}
			id.Title.Set(value, SourceUserInput)
		}
		return nil
	}
	id.Author.Set(UnknownAuthor, SourceDefault)
	id.Title.Set(UnknownTitle, SourceDefault)
	return nil
}

func (r *Resolver) applyOnlineLookup(ctx context.Context, id *Identity, hasLocalCover bool, logger *slog.Logger) {
	if r.lookup == nil {
		return
	}
	// Defaults are placeholders, not identities worth querying.
	if id.Author.Source == SourceDefault || id.Title.Source == SourceDefault {
		return
	}
	needsSeries := !id.Series.IsSet() && LooksLikeSeries(id.Title.Value)
	needsCover := !hasLocalCover
	if !needsSeries && !needsCover {
		return
	}

	record, err := r.lookup.Search(ctx, id.Title.Value, id.Author.Value)
	if err != nil {
		logger.Warn("online lookup failed", logging.Error(err))
		return
	}
	if record == nil {
		logger.Debug("online lookup found nothing",
			logging.String("title", id.Title.Value),
			logging.String("author", id.Author.Value))
		return
	}

	id.Narrator.Set(record.Narrator, SourceOnlineLookup)
	id.Series.Set(record.Series, SourceOnlineLookup)
	id.SeriesPart.Set(record.SeriesPart, SourceOnlineLookup)
	id.Year.Set(record.Year, SourceOnlineLookup)
	id.Description.Set(record.Description, SourceOnlineLookup)
	if len(record.Genres) > 0 {
		id.Genre.Set(record.Genres[0], SourceOnlineLookup)
	}
	if id.CoverURL == "" && !hasLocalCover {
		id.CoverURL = strings.TrimSpace(record.CoverURL)
	}
}
