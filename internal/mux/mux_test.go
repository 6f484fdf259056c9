package mux_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bookbinder/internal/identify"
	"bookbinder/internal/mux"
	"bookbinder/internal/services"
	"bookbinder/internal/supervise"
)

func jobFor(t *testing.T, coverPath string) mux.Job {
	t.Helper()
	var id identify.Identity
	id.Title.Set("Foundation", identify.SourceDirectoryName)
	id.Author.Set("Isaac Asimov", identify.SourceDirectoryName)
	work := t.TempDir()
	return mux.Job{
		Files:      []string{"/books/a/01.mp3", "/books/a/02.mp3"},
		Identity:   id,
		CoverPath:  coverPath,
		OutputPath: filepath.Join(work, "out.m4b"),
		WorkDir:    work,
		Bitrate:    "64k",
	}
}

func TestMuxFirstStrategySucceeds(t *testing.T) {
	var attempts [][]string
	run := func(ctx context.Context, binary string, args []string, opts supervise.Options) (supervise.Result, error) {
		attempts = append(attempts, args)
		job := args[len(args)-1]
		if err := os.WriteFile(job, []byte("m4b"), 0o644); err != nil {
			t.Fatalf("write artifact: %v", err)
		}
		return supervise.Result{}, nil
	}
	m := mux.New("ffmpeg", time.Hour, mux.WithRunner(run))

	if err := m.Mux(context.Background(), jobFor(t, "")); err != nil {
		t.Fatalf("Mux: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("ran %d strategies", len(attempts))
	}
}

func TestMuxWritesSupportFiles(t *testing.T) {
	job := jobFor(t, "")
	run := func(ctx context.Context, binary string, args []string, opts supervise.Options) (supervise.Result, error) {
		list, err := os.ReadFile(filepath.Join(job.WorkDir, "inputs.ffconcat"))
		if err != nil {
			t.Fatalf("concat list: %v", err)
		}
		if len(list) == 0 {
			t.Fatal("empty concat list")
		}
		if _, err := os.Stat(filepath.Join(job.WorkDir, "metadata.txt")); err != nil {
			t.Fatalf("metadata file: %v", err)
		}
		return supervise.Result{}, os.WriteFile(job.OutputPath, []byte("m4b"), 0o644)
	}
	m := mux.New("ffmpeg", time.Hour, mux.WithRunner(run))

	if err := m.Mux(context.Background(), job); err != nil {
		t.Fatalf("Mux: %v", err)
	}
}

func TestMuxFallsThroughStrategies(t *testing.T) {
	var attempts int
	run := func(ctx context.Context, binary string, args []string, opts supervise.Options) (supervise.Result, error) {
		attempts++
		if attempts < 3 {
			return supervise.Result{ExitCode: 1}, services.Wrap(services.ErrSubprocessFailed, "supervise", "run", "boom", nil)
		}
		return supervise.Result{}, os.WriteFile(args[len(args)-1], []byte("m4b"), 0o644)
	}
	m := mux.New("ffmpeg", time.Hour, mux.WithRunner(run))

	if err := m.Mux(context.Background(), jobFor(t, "")); err != nil {
		t.Fatalf("Mux: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d", attempts)
	}
}

func TestMuxTimeoutStopsChain(t *testing.T) {
	var attempts int
	run := func(ctx context.Context, binary string, args []string, opts supervise.Options) (supervise.Result, error) {
		attempts++
		return supervise.Result{ExitCode: -1, TimedOut: true},
			services.Wrap(services.ErrSubprocessTimeout, "supervise", "run", "deadline", nil)
	}
	m := mux.New("ffmpeg", time.Hour, mux.WithRunner(run))

	err := m.Mux(context.Background(), jobFor(t, ""))
	if !errors.Is(err, services.ErrSubprocessTimeout) {
		t.Fatalf("err = %v", err)
	}
	if attempts != 1 {
		t.Fatalf("timeout should not retry, attempts = %d", attempts)
	}
}

func TestMuxFatalSignatureStopsChain(t *testing.T) {
	var attempts int
	run := func(ctx context.Context, binary string, args []string, opts supervise.Options) (supervise.Result, error) {
		attempts++
		if err := os.WriteFile(opts.StderrPath, []byte("garbage\nInvalid data found when processing input\n"), 0o644); err != nil {
			t.Fatalf("write stderr: %v", err)
		}
		return supervise.Result{ExitCode: 1},
			services.Wrap(services.ErrSubprocessFailed, "supervise", "run", "exit 1", nil)
	}
	m := mux.New("ffmpeg", time.Hour, mux.WithRunner(run))

	err := m.Mux(context.Background(), jobFor(t, ""))
	if !errors.Is(err, services.ErrSubprocessFailed) {
		t.Fatalf("err = %v", err)
	}
	if attempts != 1 {
		t.Fatalf("fatal signature should not retry, attempts = %d", attempts)
	}
}

func TestMuxEmptyArtifactRetries(t *testing.T) {
	var attempts int
	run := func(ctx context.Context, binary string, args []string, opts supervise.Options) (supervise.Result, error) {
		attempts++
		if attempts == 1 {
			return supervise.Result{}, os.WriteFile(args[len(args)-1], nil, 0o644)
		}
		return supervise.Result{}, os.WriteFile(args[len(args)-1], []byte("m4b"), 0o644)
	}
	m := mux.New("ffmpeg", time.Hour, mux.WithRunner(run))

	if err := m.Mux(context.Background(), jobFor(t, "")); err != nil {
		t.Fatalf("Mux: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d", attempts)
	}
}

func TestMuxCoverOnlyInFirstStrategy(t *testing.T) {
	cover := filepath.Join(t.TempDir(), "cover.jpg")
	var sawCover []bool
	run := func(ctx context.Context, binary string, args []string, opts supervise.Options) (supervise.Result, error) {
		found := false
		for _, arg := range args {
			if arg == cover {
				found = true
			}
		}
		sawCover = append(sawCover, found)
		return supervise.Result{ExitCode: 1},
			services.Wrap(services.ErrSubprocessFailed, "supervise", "run", "exit 1", nil)
	}
	m := mux.New("ffmpeg", time.Hour, mux.WithRunner(run))

	if err := m.Mux(context.Background(), jobFor(t, cover)); err == nil {
		t.Fatal("expected failure when every strategy fails")
	}
	if len(sawCover) != 3 {
		t.Fatalf("ran %d strategies", len(sawCover))
	}
	if !sawCover[0] || sawCover[1] || sawCover[2] {
		t.Fatalf("cover mapping per strategy = %v", sawCover)
	}
}
