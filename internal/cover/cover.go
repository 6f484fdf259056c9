package cover

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"bookbinder/internal/services"
)

// Art subdirectory some rippers drop scans into.
const artSubdir = "cover_art"

var coverBaseNames = []string{"cover", "folder", "album", "artwork", "art", "front"}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".bmp":  {},
}

// IsImage reports whether path carries a recognized image extension.
func IsImage(path string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Find returns the best cover image in dir. Preference order: an exact
// well-known name (cover.jpg, folder.png, ...) matched case-insensitively,
// then any image under cover_art/, then any image in the directory itself.
func Find(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	var fallback string
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		if isWellKnownName(entry.Name()) {
			return filepath.Join(dir, entry.Name()), true
		}
		if fallback == "" {
			fallback = filepath.Join(dir, entry.Name())
		}
	}

	if path, ok := findInSubdir(filepath.Join(dir, artSubdir)); ok {
		return path, true
	}
	if fallback != "" {
		return fallback, true
	}
	return "", false
}

func isWellKnownName(name string) bool {
	stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	for _, base := range coverBaseNames {
		if stem == base {
			return true
		}
	}
	return false
}

func findInSubdir(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if !entry.IsDir() && IsImage(entry.Name()) {
			return filepath.Join(dir, entry.Name()), true
		}
	}
	return "", false
}

// Download fetches url into destDir and returns the saved path. The file
// keeps the URL's extension when it looks like an image, falling back to
// .jpg otherwise.
func Download(ctx context.Context, client *http.Client, url, destDir string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", services.Wrap(services.ErrSubprocessFailed, "cover", "download", "build cover request", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrSubprocessFailed, "cover", "download", "fetch cover", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrSubprocessFailed, "cover", "download",
			fmt.Sprintf("cover fetch returned status %d", resp.StatusCode), nil)
	}

	ext := strings.ToLower(filepath.Ext(url))
	if _, ok := imageExtensions[ext]; !ok {
		ext = ".jpg"
	}
	dest := filepath.Join(destDir, "cover"+ext)
	out, err := os.Create(dest)
	if err != nil {
		return "", services.Wrap(services.ErrDirectoryUnwritable, "cover", "download", "create cover file", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return "", services.Wrap(services.ErrSubprocessFailed, "cover", "download", "write cover file", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return "", services.Wrap(services.ErrDirectoryUnwritable, "cover", "download", "close cover file", err)
	}
	return dest, nil
}
