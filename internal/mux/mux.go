package mux

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookbinder/internal/chapters"
	"bookbinder/internal/identify"
	"bookbinder/internal/logging"
	"bookbinder/internal/services"
	"bookbinder/internal/supervise"
)

// Stderr signatures that make retrying pointless.
const (
	signatureStdinBlocked = "Enter command:"
	signatureCorruptInput = "Invalid data found when processing input"
)

const stderrTailBytes = 16 * 1024

// Job describes one book's mux: the ordered inputs, resolved identity,
// chapter layout, and where the artifact lands.
type Job struct {
	Files      []string
	Identity   identify.Identity
	CoverPath  string
	Plan       chapters.Plan
	OutputPath string
	// WorkDir holds the generated concat list, metadata file, and stderr
	// captures. Caller owns its lifecycle.
	WorkDir string
	Bitrate string
}

// RunFunc matches supervise.Run and is injectable for tests.
type RunFunc func(ctx context.Context, binary string, args []string, opts supervise.Options) (supervise.Result, error)

// Muxer drives ffmpeg through the strategy chain.
type Muxer struct {
	binary  string
	timeout time.Duration
	run     RunFunc
	logger  *slog.Logger
}

// Option configures a Muxer.
type Option func(*Muxer)

// WithRunner replaces the supervised process runner.
func WithRunner(run RunFunc) Option {
	return func(m *Muxer) { m.run = run }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Muxer) {
		if logger != nil {
			m.logger = logger.With(logging.String(logging.FieldComponent, "mux"))
		}
	}
}

// New builds a Muxer for the given ffmpeg binary and per-run timeout.
func New(binary string, timeout time.Duration, opts ...Option) *Muxer {
	m := &Muxer{
		binary:  binary,
		timeout: timeout,
		run:     supervise.Run,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mux writes the support files and tries each strategy until one produces
// a non-empty artifact. Timeouts and fatal stderr signatures stop the
// chain immediately; other failures fall through to the next strategy.
func (m *Muxer) Mux(ctx context.Context, job Job) error {
	if len(job.Files) == 0 {
		return services.Wrap(services.ErrNoAudioFiles, "mux", "mux", "no input files", nil)
	}

	listPath := filepath.Join(job.WorkDir, "inputs.ffconcat")
	if err := os.WriteFile(listPath, []byte(renderConcatList(job.Files)), 0o644); err != nil {
		return services.Wrap(services.ErrDirectoryUnwritable, "mux", "mux", "write concat list", err)
	}
	metaPath := filepath.Join(job.WorkDir, "metadata.txt")
	if err := os.WriteFile(metaPath, []byte(renderFFMetadata(job.Identity, job.Plan)), 0o644); err != nil {
		return services.Wrap(services.ErrDirectoryUnwritable, "mux", "mux", "write chapter metadata", err)
	}

	var lastErr error
	for _, strategy := range strategies() {
		stderrPath := filepath.Join(job.WorkDir, fmt.Sprintf("ffmpeg-%s.stderr.log", strategy.Name()))
		m.logger.Info("mux attempt",
			logging.String("strategy", strategy.Name()),
			logging.Int("inputs", len(job.Files)))

		result, err := m.run(ctx, m.binary, strategy.Args(job, listPath, metaPath), supervise.Options{
			Timeout:    m.timeout,
			StderrPath: stderrPath,
			Logger:     m.logger,
		})
		if err == nil {
			if verifyErr := verifyArtifact(job.OutputPath); verifyErr != nil {
				m.logger.Warn("mux produced no usable artifact",
					logging.String("strategy", strategy.Name()),
					logging.Error(verifyErr))
				lastErr = verifyErr
				continue
			}
			return nil
		}

		os.Remove(job.OutputPath)
		if result.TimedOut {
			return err
		}
		if classified, fatal := classifyStderr(stderrPath, result.ExitCode); fatal {
			return classified
		}
		m.logger.Warn("mux strategy failed",
			logging.String("strategy", strategy.Name()),
			logging.Int("exit_code", result.ExitCode),
			logging.Error(err))
		lastErr = err
	}
	if lastErr == nil {
		lastErr = services.Wrap(services.ErrSubprocessFailed, "mux", "mux", "all strategies exhausted", nil)
	}
	return lastErr
}

// classifyStderr maps known ffmpeg failure text onto errors that stop the
// strategy chain.
func classifyStderr(stderrPath string, exitCode int) (error, bool) {
	tail := supervise.StderrTail(stderrPath, stderrTailBytes)
	switch {
	case strings.Contains(tail, signatureStdinBlocked):
		return services.Wrap(services.ErrSubprocessFailed, "mux", "mux",
			"tool blocked waiting for stdin input, misconfigured invocation", nil), true
	case strings.Contains(tail, signatureCorruptInput):
		return services.Wrap(services.ErrSubprocessFailed, "mux", "mux",
			fmt.Sprintf("corrupt or unsupported source audio (exit %d)", exitCode), nil), true
	}
	return nil, false
}

func verifyArtifact(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrOutputTooSmall, "mux", "verify", "artifact missing after mux", err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrOutputTooSmall, "mux", "verify", "artifact is empty", nil)
	}
	return nil
}
