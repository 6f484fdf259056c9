package convert_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bookbinder/internal/config"
	"bookbinder/internal/convert"
	"bookbinder/internal/identify"
	"bookbinder/internal/ledger"
	"bookbinder/internal/media/ffprobe"
	"bookbinder/internal/mux"
	"bookbinder/internal/services"
	"bookbinder/internal/supervise"
	"bookbinder/internal/testsupport"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t)
}

func bookDir(t *testing.T, name string, fileSizes map[string]int64) string {
	t.Helper()
	return testsupport.BookDir(t, t.TempDir(), name, fileSizes)
}

func quietProbe(ctx context.Context, binary, path string) (ffprobe.Result, error) {
	return ffprobe.Result{Format: ffprobe.Format{Duration: "60"}}, nil
}

// stubMuxer succeeds every mux by writing an artifact of the given size.
func stubMuxer(t *testing.T, artifactSize int) *mux.Muxer {
	t.Helper()
	run := func(ctx context.Context, binary string, args []string, opts supervise.Options) (supervise.Result, error) {
		return supervise.Result{}, os.WriteFile(args[len(args)-1], make([]byte, artifactSize), 0o644)
	}
	return mux.New("ffmpeg", time.Hour, mux.WithRunner(run))
}

func newOrchestrator(t *testing.T, cfg *config.Config, artifactSize int) *convert.Orchestrator {
	t.Helper()
	return convert.New(cfg,
		convert.WithProbe(quietProbe),
		convert.WithResolver(identify.New("ffprobe", identify.WithProbe(quietProbe))),
		convert.WithMuxer(stubMuxer(t, artifactSize)),
	)
}

func TestProcessConvertsBook(t *testing.T) {
	cfg := testConfig(t)
	dir := bookDir(t, "Isaac Asimov - Foundation", map[string]int64{"01.mp3": 500, "02.mp3": 500})
	orch := newOrchestrator(t, cfg, 800)

	result, err := orch.Process(context.Background(), dir)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Status != ledger.StatusCompleted {
		t.Fatalf("status = %q", result.Status)
	}
	want := filepath.Join(cfg.Paths.LibraryDir, "Unsorted", "Isaac Asimov", "Isaac Asimov - Foundation.m4b")
	if result.OutputPath != want {
		t.Fatalf("output = %q, want %q", result.OutputPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	// Originals untouched without the deletion flag.
	if _, err := os.Stat(filepath.Join(dir, "01.mp3")); err != nil {
		t.Fatalf("original missing: %v", err)
	}
	// Staging is discarded.
	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatalf("read staging: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("staging not cleaned: %v", entries)
	}
}

func TestProcessStagesLocalCover(t *testing.T) {
	cfg := testConfig(t)
	dir := bookDir(t, "Isaac Asimov - Foundation", map[string]int64{"01.mp3": 500})
	srcCover := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(srcCover, []byte("jpeg bytes"), 0o644); err != nil {
		t.Fatalf("write cover: %v", err)
	}

	var coverArg string
	capturing := mux.New("ffmpeg", time.Hour, mux.WithRunner(
		func(ctx context.Context, binary string, args []string, opts supervise.Options) (supervise.Result, error) {
			for _, arg := range args {
				if filepath.Base(arg) == "cover.jpg" {
					coverArg = arg
				}
			}
			return supervise.Result{}, os.WriteFile(args[len(args)-1], make([]byte, 400), 0o644)
		}))
	orch := convert.New(cfg,
		convert.WithProbe(quietProbe),
		convert.WithResolver(identify.New("ffprobe", identify.WithProbe(quietProbe))),
		convert.WithMuxer(capturing),
	)

	if _, err := orch.Process(context.Background(), dir); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if coverArg == "" {
		t.Fatal("mux never saw a cover input")
	}
	if coverArg == srcCover {
		t.Fatal("mux should read the staged copy, not the source cover")
	}
	if !strings.HasPrefix(coverArg, cfg.Paths.StagingDir) {
		t.Fatalf("cover %q not under staging %q", coverArg, cfg.Paths.StagingDir)
	}
	if _, err := os.Stat(srcCover); err != nil {
		t.Fatalf("source cover must survive: %v", err)
	}
}

func TestProcessSecondRunSkips(t *testing.T) {
	cfg := testConfig(t)
	dir := bookDir(t, "Isaac Asimov - Foundation", map[string]int64{"01.mp3": 500})
	orch := newOrchestrator(t, cfg, 400)

	if _, err := orch.Process(context.Background(), dir); err != nil {
		t.Fatalf("first Process: %v", err)
	}
	_, err := orch.Process(context.Background(), dir)
	if !services.IsSkip(err) {
		t.Fatalf("second run err = %v", err)
	}

	// A fresh orchestrator over the same library also skips: the artifact
	// already exists at the destination.
	fresh := newOrchestrator(t, cfg, 400)
	_, err = fresh.Process(context.Background(), dir)
	if !services.IsSkip(err) {
		t.Fatalf("fresh run err = %v", err)
	}
}

func TestProcessSkipsChapteredDirectory(t *testing.T) {
	cfg := testConfig(t)
	dir := bookDir(t, "done", map[string]int64{"book.m4b": 100, "01.mp3": 100})
	orch := newOrchestrator(t, cfg, 100)

	_, err := orch.Process(context.Background(), dir)
	if !services.IsSkip(err) {
		t.Fatalf("err = %v", err)
	}
}

func TestProcessNoAudioFiles(t *testing.T) {
	cfg := testConfig(t)
	dir := bookDir(t, "empty", map[string]int64{"notes.txt": 10})
	orch := newOrchestrator(t, cfg, 100)

	_, err := orch.Process(context.Background(), dir)
	if !errors.Is(err, services.ErrNoAudioFiles) {
		t.Fatalf("err = %v", err)
	}
	entries, readErr := os.ReadDir(cfg.Paths.LibraryDir)
	if readErr != nil {
		t.Fatalf("read library: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("no artifact expected, library has %v", entries)
	}
}

func TestProcessDeletesOriginalsWhenPlausible(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cleanup.DeleteOriginals = true
	dir := bookDir(t, "Isaac Asimov - Foundation", map[string]int64{"01.mp3": 500, "02.mp3": 500})
	orch := newOrchestrator(t, cfg, 800)

	result, err := orch.Process(context.Background(), dir)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Reason != "" {
		t.Fatalf("unexpected retention note: %q", result.Reason)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "01.mp3")); !os.IsNotExist(statErr) {
		t.Fatal("originals should be deleted")
	}
}

func TestProcessRetainsOriginalsWhenArtifactTooSmall(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cleanup.DeleteOriginals = true
	dir := bookDir(t, "Isaac Asimov - Foundation", map[string]int64{"01.mp3": 500, "02.mp3": 500})
	orch := newOrchestrator(t, cfg, 100)

	result, err := orch.Process(context.Background(), dir)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Status != ledger.StatusCompleted {
		t.Fatalf("status = %q", result.Status)
	}
	if result.Reason == "" {
		t.Fatal("expected a retention note")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "01.mp3")); statErr != nil {
		t.Fatalf("originals must survive the guard: %v", statErr)
	}
}

func TestProcessMuxFailureDiscardsStaging(t *testing.T) {
	cfg := testConfig(t)
	dir := bookDir(t, "Isaac Asimov - Foundation", map[string]int64{"01.mp3": 500})
	failing := mux.New("ffmpeg", time.Hour, mux.WithRunner(
		func(ctx context.Context, binary string, args []string, opts supervise.Options) (supervise.Result, error) {
			return supervise.Result{ExitCode: 1, TimedOut: true},
				services.Wrap(services.ErrSubprocessTimeout, "supervise", "run", "deadline", nil)
		}))
	orch := convert.New(cfg,
		convert.WithProbe(quietProbe),
		convert.WithResolver(identify.New("ffprobe", identify.WithProbe(quietProbe))),
		convert.WithMuxer(failing),
	)

	_, err := orch.Process(context.Background(), dir)
	if !errors.Is(err, services.ErrSubprocessTimeout) {
		t.Fatalf("err = %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "01.mp3")); statErr != nil {
		t.Fatalf("originals must survive failures: %v", statErr)
	}
	entries, readErr := os.ReadDir(cfg.Paths.StagingDir)
	if readErr != nil {
		t.Fatalf("read staging: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("staging not discarded: %v", entries)
	}
}

func TestRunBatchSummaryAndLedger(t *testing.T) {
	cfg := testConfig(t)
	root := t.TempDir()
	for _, name := range []string{"Isaac Asimov - Foundation", "Frank Herbert - Dune"} {
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "01.mp3"), make([]byte, 100), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	store, err := ledger.Open(cfg.Paths.StateDir)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	defer store.Close()

	orch := convert.New(cfg,
		convert.WithProbe(quietProbe),
		convert.WithResolver(identify.New("ffprobe", identify.WithProbe(quietProbe))),
		convert.WithMuxer(stubMuxer(t, 90)),
		convert.WithLedger(store),
		convert.WithRunID("run-test"),
	)

	summary, results, err := orch.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Completed != 2 || summary.Failed != 0 || summary.Skipped != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}

	recorded, err := store.RunSummary(context.Background(), "run-test")
	if err != nil {
		t.Fatalf("RunSummary: %v", err)
	}
	if recorded.Completed != 2 {
		t.Fatalf("ledger summary = %+v", recorded)
	}

	// Second batch over the same root skips both via the ledger.
	again := convert.New(cfg,
		convert.WithProbe(quietProbe),
		convert.WithResolver(identify.New("ffprobe", identify.WithProbe(quietProbe))),
		convert.WithMuxer(stubMuxer(t, 90)),
		convert.WithLedger(store),
		convert.WithRunID("run-test-2"),
	)
	summary, _, err = again.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if summary.Skipped != 2 || summary.Completed != 0 {
		t.Fatalf("second summary = %+v", summary)
	}
}

func TestRunInvalidRootIsFatal(t *testing.T) {
	cfg := testConfig(t)
	orch := newOrchestrator(t, cfg, 100)

	_, _, err := orch.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, services.ErrInvalidInputPath) {
		t.Fatalf("err = %v", err)
	}
}
