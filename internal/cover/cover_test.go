package cover_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"bookbinder/internal/cover"
)

func touch(t *testing.T, paths ...string) {
	t.Helper()
	for _, path := range paths {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("img"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func TestFindPrefersWellKnownNames(t *testing.T) {
	dir := t.TempDir()
	touch(t,
		filepath.Join(dir, "scan01.png"),
		filepath.Join(dir, "Folder.JPG"),
	)

	path, ok := cover.Find(dir)
	if !ok {
		t.Fatal("expected a cover")
	}
	if filepath.Base(path) != "Folder.JPG" {
		t.Fatalf("picked %q, want the well-known name", path)
	}
}

func TestFindChecksArtSubdir(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "cover_art", "scan.webp"))

	path, ok := cover.Find(dir)
	if !ok {
		t.Fatal("expected a cover")
	}
	if filepath.Base(path) != "scan.webp" {
		t.Fatalf("picked %q", path)
	}
}

func TestFindFallsBackToAnyImage(t *testing.T) {
	dir := t.TempDir()
	touch(t,
		filepath.Join(dir, "book.mp3"),
		filepath.Join(dir, "back-insert.jpeg"),
	)

	path, ok := cover.Find(dir)
	if !ok {
		t.Fatal("expected a cover")
	}
	if filepath.Base(path) != "back-insert.jpeg" {
		t.Fatalf("picked %q", path)
	}
}

func TestFindNoImages(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "book.mp3"))

	if _, ok := cover.Find(dir); ok {
		t.Fatal("expected no cover")
	}
}

func TestDownloadSavesWithURLExtension(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes"))
	}))
	defer server.Close()

	dir := t.TempDir()
	path, err := cover.Download(context.Background(), server.Client(), server.URL+"/art.png", dir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if filepath.Base(path) != "cover.png" {
		t.Fatalf("saved as %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("content = %q", data)
	}
}

func TestDownloadRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	if _, err := cover.Download(context.Background(), server.Client(), server.URL+"/missing.jpg", t.TempDir()); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
}
