package discover_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bookbinder/internal/discover"
	"bookbinder/internal/services"
)

func seed(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, file := range files {
		path := filepath.Join(root, file)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", file, err)
		}
	}
}

func TestCandidatesFindsBookDirectories(t *testing.T) {
	root := t.TempDir()
	seed(t, root,
		"Isaac Asimov - Foundation/01.mp3",
		"Isaac Asimov - Foundation/02.mp3",
		"Frank Herbert - Dune/dune.m4b",
		"empty-folder/notes.txt",
	)
	if err := os.MkdirAll(filepath.Join(root, "truly-empty"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	dirs, err := discover.Candidates(root)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(dirs) != 2 {
		t.Fatalf("dirs = %v", dirs)
	}
	if filepath.Base(dirs[0]) != "Frank Herbert - Dune" || filepath.Base(dirs[1]) != "Isaac Asimov - Foundation" {
		t.Fatalf("dirs = %v", dirs)
	}
}

func TestCandidatesRootItselfIsABook(t *testing.T) {
	root := t.TempDir()
	seed(t, root, "01.mp3", "nested/ignored.mp3")

	dirs, err := discover.Candidates(root)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(dirs) != 1 || dirs[0] != root {
		t.Fatalf("dirs = %v", dirs)
	}
}

func TestCandidatesSkipsNestedBelowBook(t *testing.T) {
	root := t.TempDir()
	seed(t, root,
		"book/01.mp3",
		"book/cover_art/cover.jpg",
		"book/disc2/02.mp3",
	)

	dirs, err := discover.Candidates(root)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(dirs) != 1 || filepath.Base(dirs[0]) != "book" {
		t.Fatalf("dirs = %v", dirs)
	}
}

func TestCandidatesInvalidRoot(t *testing.T) {
	_, err := discover.Candidates(filepath.Join(t.TempDir(), "does-not-exist"))
	if !errors.Is(err, services.ErrInvalidInputPath) {
		t.Fatalf("err = %v", err)
	}
}

func TestVisitedSetCollapsesSymlinks(t *testing.T) {
	base := t.TempDir()
	real := filepath.Join(base, "real")
	if err := os.MkdirAll(real, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	alias := filepath.Join(base, "alias")
	if err := os.Symlink(real, alias); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	visited := discover.NewVisitedSet()
	if !visited.Visit(real) {
		t.Fatal("first visit should be new")
	}
	if visited.Visit(alias) {
		t.Fatal("symlinked alias should count as visited")
	}
	if visited.Len() != 1 {
		t.Fatalf("len = %d", visited.Len())
	}
}

func TestVisitedSetDistinctPaths(t *testing.T) {
	visited := discover.NewVisitedSet()
	a, b := t.TempDir(), t.TempDir()
	if !visited.Visit(a) || !visited.Visit(b) {
		t.Fatal("distinct paths should both be new")
	}
	if visited.Visit(a) {
		t.Fatal("repeat visit should be rejected")
	}
}
