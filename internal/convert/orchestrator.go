package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"bookbinder/internal/chapters"
	"bookbinder/internal/config"
	"bookbinder/internal/cover"
	"bookbinder/internal/discover"
	"bookbinder/internal/fileutil"
	"bookbinder/internal/identify"
	"bookbinder/internal/inventory"
	"bookbinder/internal/ledger"
	"bookbinder/internal/library"
	"bookbinder/internal/logging"
	"bookbinder/internal/media/ffprobe"
	"bookbinder/internal/mux"
	"bookbinder/internal/services"
)

// BookResult is one directory's outcome, suitable for summary output and
// the ledger.
type BookResult struct {
	Dir        string
	Identity   identify.Identity
	Status     string
	Reason     string
	OutputPath string
}

// Orchestrator sequences one book's conversion end to end.
type Orchestrator struct {
	cfg      *config.Config
	resolver *identify.Resolver
	muxer    *mux.Muxer
	lib      *library.Library
	store    *ledger.Store
	probe    ffprobe.Inspector
	client   *http.Client
	visited  *discover.VisitedSet
	logger   *slog.Logger
	runID    string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithResolver injects the metadata resolver.
func WithResolver(r *identify.Resolver) Option {
	return func(o *Orchestrator) { o.resolver = r }
}

// WithMuxer injects the muxer.
func WithMuxer(m *mux.Muxer) Option {
	return func(o *Orchestrator) { o.muxer = m }
}

// WithLibrary injects the destination library.
func WithLibrary(l *library.Library) Option {
	return func(o *Orchestrator) { o.lib = l }
}

// WithLedger attaches the persistent run ledger.
func WithLedger(s *ledger.Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithProbe injects the duration/tag prober.
func WithProbe(p ffprobe.Inspector) Option {
	return func(o *Orchestrator) { o.probe = p }
}

// WithHTTPClient injects the client used for cover downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Orchestrator) { o.client = c }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger.With(logging.String(logging.FieldComponent, "convert"))
		}
	}
}

// WithRunID pins the run identifier (tests use fixed values).
func WithRunID(id string) Option {
	return func(o *Orchestrator) { o.runID = id }
}

// New builds an Orchestrator over cfg, wiring default collaborators for
// any not injected.
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		probe:   ffprobe.Inspect,
		client:  http.DefaultClient,
		visited: discover.NewVisitedSet(),
		logger:  logging.NewNop(),
		runID:   uuid.NewString(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.resolver == nil {
		o.resolver = identify.New(cfg.FFmpeg.FFprobeBinary, identify.WithProbe(o.probe))
	}
	if o.muxer == nil {
		o.muxer = mux.New(cfg.FFmpeg.FFmpegBinary, cfg.MuxTimeoutDuration(), mux.WithLogger(o.logger))
	}
	if o.lib == nil {
		o.lib = library.New(cfg.Paths.LibraryDir, o.logger)
	}
	return o
}

// RunID returns the identifier shared by this run's ledger records.
func (o *Orchestrator) RunID() string { return o.runID }

// Process converts one book directory. Errors are book-scoped; skips are
// signaled with ErrAlreadyProcessed.
func (o *Orchestrator) Process(ctx context.Context, dir string) (BookResult, error) {
	canonical := discover.Canonical(dir)
	ctx = services.WithBook(ctx, filepath.Base(canonical))
	logger := logging.WithContext(ctx, o.logger)
	result := BookResult{Dir: canonical}

	if !o.visited.Visit(canonical) {
		return result, services.Wrap(services.ErrAlreadyProcessed, "convert", "visit",
			"directory already handled in this run", nil)
	}

	inv, err := inventory.Scan(canonical, true)
	if err != nil {
		return result, services.Wrap(services.ErrNoAudioFiles, "convert", "inventory", "scan book directory", err)
	}
	if inv.Chaptered != "" {
		return result, services.Wrap(services.ErrAlreadyProcessed, "convert", "inventory",
			fmt.Sprintf("directory already holds %s", filepath.Base(inv.Chaptered)), nil)
	}
	if inv.Empty() {
		return result, services.Wrap(services.ErrNoAudioFiles, "convert", "inventory",
			"no recognized audio files", nil)
	}
	if o.store != nil {
		if done, ledgerErr := o.store.IsCompleted(ctx, canonical); ledgerErr == nil && done {
			return result, services.Wrap(services.ErrAlreadyProcessed, "convert", "ledger",
				"directory converted in a previous run", nil)
		}
	}

	coverPath, hasCover := cover.Find(canonical)
	identity, err := o.resolver.Resolve(ctx, canonical, inv.Files, hasCover)
	if err != nil {
		return result, err
	}
	result.Identity = identity
	ctx = services.WithBook(ctx, identity.Title.Value)
	logger = logging.WithContext(ctx, o.logger)
	logger.Info("book identified",
		logging.String("author", identity.Author.Value),
		logging.String("title", identity.Title.Value),
		logging.Int("inputs", len(inv.Files)))

	if o.lib.Exists(identity) {
		return result, services.Wrap(services.ErrAlreadyProcessed, "convert", "library",
			"artifact already present in library", nil)
	}

	staging := filepath.Join(o.cfg.Paths.StagingDir, "book-"+uuid.NewString())
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return result, services.Wrap(services.ErrDirectoryUnwritable, "convert", "staging",
			"create staging directory", err)
	}
	defer os.RemoveAll(staging)

	// Everything ffmpeg reads besides the inputs lives in staging, covers
	// included, so a mid-run change to the source directory cannot bite.
	if hasCover {
		stagedCover := filepath.Join(staging, "cover"+filepath.Ext(coverPath))
		if copyErr := fileutil.CopyFile(coverPath, stagedCover); copyErr == nil {
			coverPath = stagedCover
		} else {
			logger.Warn("cover staging failed", logging.Error(copyErr))
		}
	}
	if !hasCover && identity.CoverURL != "" {
		if downloaded, dlErr := cover.Download(ctx, o.client, identity.CoverURL, staging); dlErr == nil {
			coverPath = downloaded
		} else {
			logger.Warn("cover download failed", logging.Error(dlErr))
		}
	}

	plan, err := chapters.Build(ctx, o.probe, o.cfg.FFmpeg.FFprobeBinary, inv.Files)
	if err != nil {
		return result, err
	}

	outputName := library.OutputFileName(identity)
	stagedArtifact := filepath.Join(staging, outputName)
	err = o.muxer.Mux(ctx, mux.Job{
		Files:      inv.Files,
		Identity:   identity,
		CoverPath:  coverPath,
		Plan:       plan,
		OutputPath: stagedArtifact,
		WorkDir:    staging,
		Bitrate:    o.cfg.FFmpeg.AudioBitrate,
	})
	if err != nil {
		return result, err
	}

	finalPath, err := o.lib.Place(ctx, stagedArtifact, identity)
	if err != nil {
		return result, err
	}
	result.OutputPath = finalPath
	result.Status = ledger.StatusCompleted

	if o.cfg.Cleanup.DeleteOriginals {
		if guardErr := VerifyArtifactSize(finalPath, inv.TotalSize(), o.cfg.Cleanup.MinSizeRatio); guardErr != nil {
			logger.Warn("originals retained", logging.Error(guardErr))
			result.Reason = "originals retained: " + services.Details(guardErr).Message
		} else if delErr := DeleteOriginals(inv); delErr != nil {
			logger.Warn("original cleanup incomplete", logging.Error(delErr))
			result.Reason = "originals partially removed"
		} else {
			logger.Info("originals removed", logging.Int("files", len(inv.Files)))
		}
	}

	logger.Info("book converted", logging.String("output", finalPath))
	return result, nil
}

// classify maps a Process error onto a ledger status and reason.
func classify(err error) (string, string) {
	switch {
	case err == nil:
		return ledger.StatusCompleted, ""
	case errors.Is(err, services.ErrAlreadyProcessed):
		return ledger.StatusSkipped, services.Details(err).Message
	default:
		return ledger.StatusFailed, services.Details(err).Message
	}
}
