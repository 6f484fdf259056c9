package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookbinder/internal/services"
)

func writeTestConfig(t *testing.T, extraSections ...string) string {
	t.Helper()
	base := t.TempDir()
	cfgPath := filepath.Join(base, "config.toml")
	contents := fmt.Sprintf(`[paths]
library_dir = %q
staging_dir = %q
log_dir = %q
state_dir = %q
`,
		filepath.Join(base, "library"),
		filepath.Join(base, "staging"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "state"),
	)
	for _, section := range extraSections {
		contents += "\n" + section
	}
	if err := os.WriteFile(cfgPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

// writeStubTools fakes ffmpeg and ffprobe: the mux writes a fixed-size
// artifact to its final argument, the probe reports a one-minute duration.
func writeStubTools(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	ffmpeg := filepath.Join(dir, "ffmpeg")
	ffprobe := filepath.Join(dir, "ffprobe")
	ffmpegScript := "#!/bin/sh\nfor last in \"$@\"; do :; done\nhead -c 4096 /dev/zero > \"$last\"\n"
	ffprobeScript := "#!/bin/sh\nprintf '{\"format\":{\"duration\":\"60\"}}'\n"
	if err := os.WriteFile(ffmpeg, []byte(ffmpegScript), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}
	if err := os.WriteFile(ffprobe, []byte(ffprobeScript), 0o755); err != nil {
		t.Fatalf("write ffprobe stub: %v", err)
	}
	return ffmpeg, ffprobe
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "bookbinder", "config.toml")
	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output = %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
}

func TestConfigShowCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCommand(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "library_dir") || !strings.Contains(out, "audio_bitrate") {
		t.Fatalf("output = %q", out)
	}
}

func TestScanCommand(t *testing.T) {
	t.Setenv(nonInteractiveEnv, "1")
	cfgPath := writeTestConfig(t)

	root := t.TempDir()
	book := filepath.Join(root, "Isaac Asimov - Foundation")
	if err := os.MkdirAll(book, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(book, "01.mp3"), []byte("audio"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := runCommand(t, "--config", cfgPath, "scan", root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !strings.Contains(out, "Isaac Asimov") || !strings.Contains(out, "ready") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, "1 candidate directories") {
		t.Fatalf("output = %q", out)
	}
}

func TestConvertOutputFlagOverridesLibrary(t *testing.T) {
	t.Setenv(nonInteractiveEnv, "1")
	ffmpeg, ffprobe := writeStubTools(t)
	cfgPath := writeTestConfig(t,
		fmt.Sprintf("[ffmpeg]\nffmpeg_binary = %q\nffprobe_binary = %q\n", ffmpeg, ffprobe),
		"[lookup]\nenabled = false\n")

	root := t.TempDir()
	book := filepath.Join(root, "Isaac Asimov - Foundation")
	if err := os.MkdirAll(book, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(book, "01.mp3"), make([]byte, 500), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	output := filepath.Join(t.TempDir(), "shelf")
	if _, err := runCommand(t, "--config", cfgPath, "convert", "--skip-preflight",
		"--output", output, root); err != nil {
		t.Fatalf("convert: %v", err)
	}

	want := filepath.Join(output, "Unsorted", "Isaac Asimov", "Isaac Asimov - Foundation.m4b")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("artifact missing from override destination: %v", err)
	}

	// The configured library stays untouched.
	configured := filepath.Join(filepath.Dir(cfgPath), "library")
	entries, err := os.ReadDir(configured)
	if err == nil && len(entries) != 0 {
		t.Fatalf("configured library should be empty, has %v", entries)
	}
}

func TestConvertInvalidInputPath(t *testing.T) {
	t.Setenv(nonInteractiveEnv, "1")
	cfgPath := writeTestConfig(t)

	_, err := runCommand(t, "--config", cfgPath, "convert", "--skip-preflight",
		filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, services.ErrInvalidInputPath) {
		t.Fatalf("err = %v", err)
	}
}
