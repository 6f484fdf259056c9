package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using
// a simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// BookDir lays out a book directory under parent with the named audio
// files, each of the given size.
func BookDir(t testing.TB, parent, name string, files map[string]int64) string {
	t.Helper()

	dir := filepath.Join(parent, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for file, size := range files {
		WriteFile(t, filepath.Join(dir, file), size)
	}
	return dir
}

// Sidecar writes a cover.txt metadata sidecar into dir.
func Sidecar(t testing.TB, dir, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "cover.txt"), []byte(contents), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
}
