package library

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bookbinder/internal/fileutil"
	"bookbinder/internal/identify"
	"bookbinder/internal/logging"
	"bookbinder/internal/services"
)

// Library files finished artifacts under a root directory.
type Library struct {
	root   string
	logger *slog.Logger
}

// New builds a Library rooted at root.
func New(root string, logger *slog.Logger) *Library {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Library{
		root:   root,
		logger: logger.With(logging.String(logging.FieldComponent, "library")),
	}
}

// Root returns the library root directory.
func (l *Library) Root() string { return l.root }

// Destination returns the final path an identity's artifact will occupy.
func (l *Library) Destination(id identify.Identity) string {
	return filepath.Join(DestinationDir(l.root, id), OutputFileName(id))
}

// Exists reports whether the identity's artifact is already filed.
func (l *Library) Exists(id identify.Identity) bool {
	info, err := os.Stat(l.Destination(id))
	return err == nil && info.Mode().IsRegular()
}

// Place moves the artifact into its category directory and returns the
// final path. A pre-existing artifact at the destination is a skip, not
// an overwrite.
func (l *Library) Place(ctx context.Context, artifactPath string, id identify.Identity) (string, error) {
	logger := logging.WithContext(ctx, l.logger)
	dest := l.Destination(id)
	if _, err := os.Stat(dest); err == nil {
		return dest, services.Wrap(services.ErrAlreadyProcessed, "library", "place",
			fmt.Sprintf("artifact already filed at %s", dest), nil)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", services.Wrap(services.ErrDirectoryUnwritable, "library", "place",
			fmt.Sprintf("create category directory %s", filepath.Dir(dest)), err)
	}
	if err := fileutil.MoveFile(artifactPath, dest); err != nil {
		return "", services.Wrap(services.ErrDirectoryUnwritable, "library", "place",
			"move artifact into library", err)
	}
	logger.Info("artifact filed",
		logging.String("destination", dest),
		logging.String("category", CategoryPath(id)))
	return dest, nil
}
