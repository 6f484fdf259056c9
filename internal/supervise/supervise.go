package supervise

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"bookbinder/internal/logging"
	"bookbinder/internal/services"
)

// Defaults for the watchdog loop.
const (
	DefaultPollInterval = time.Second
	DefaultGracePeriod  = 2 * time.Second
)

// Result reports how a supervised process ended.
type Result struct {
	ExitCode int
	TimedOut bool
	Elapsed  time.Duration
}

// Options controls one supervised run.
type Options struct {
	// Timeout kills the process after this long. Zero means no deadline.
	Timeout time.Duration
	// GracePeriod is the SIGTERM-to-SIGKILL window. Zero uses the default.
	GracePeriod time.Duration
	// PollInterval is the liveness check cadence. Zero uses the default.
	PollInterval time.Duration
	// StderrPath captures the process's stderr when set.
	StderrPath string
	// Dir is the working directory for the process.
	Dir string

	Logger *slog.Logger
}

// Run executes binary with args under the watchdog. A non-zero exit
// returns ErrSubprocessFailed; a deadline kill returns ErrSubprocessTimeout.
// The Result is valid in both cases.
func Run(ctx context.Context, binary string, args []string, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	grace := opts.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	cmd := exec.Command(binary, args...)
	cmd.Dir = opts.Dir
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if opts.StderrPath != "" {
		stderr, err := os.Create(opts.StderrPath)
		if err != nil {
			return Result{}, services.Wrap(services.ErrDirectoryUnwritable, "supervise", "run", "create stderr log", err)
		}
		defer stderr.Close()
		cmd.Stderr = stderr
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{}, services.Wrap(services.ErrSubprocessFailed, "supervise", "run",
			fmt.Sprintf("start %s", binary), err)
	}
	logger.Debug("process started",
		logging.String("binary", binary),
		logging.Int("pid", cmd.Process.Pid))

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var deadline <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			result := Result{ExitCode: exitCode(cmd, err), Elapsed: time.Since(start)}
			if err != nil {
				return result, services.Wrap(services.ErrSubprocessFailed, "supervise", "run",
					fmt.Sprintf("%s exited with code %d", binary, result.ExitCode), err)
			}
			return result, nil
		case <-ticker.C:
			logger.Debug("process alive",
				logging.Int("pid", cmd.Process.Pid),
				logging.Duration("elapsed", time.Since(start)))
		case <-deadline:
			terminate(cmd, grace, done)
			result := Result{ExitCode: exitCode(cmd, nil), TimedOut: true, Elapsed: time.Since(start)}
			return result, services.Wrap(services.ErrSubprocessTimeout, "supervise", "run",
				fmt.Sprintf("%s exceeded %s deadline", binary, opts.Timeout), nil)
		case <-ctx.Done():
			terminate(cmd, grace, done)
			result := Result{ExitCode: exitCode(cmd, nil), TimedOut: true, Elapsed: time.Since(start)}
			return result, services.Wrap(services.ErrSubprocessTimeout, "supervise", "run",
				"run canceled", ctx.Err())
		}
	}
}

// terminate asks nicely first, then forces the issue after the grace
// window. It always drains the wait goroutine so no zombie survives.
func terminate(cmd *exec.Cmd, grace time.Duration, done <-chan error) {
	_ = cmd.Process.Signal(syscall.SIGTERM)
	select {
	case <-done:
		return
	case <-time.After(grace):
	}
	_ = cmd.Process.Kill()
	<-done
}

func exitCode(cmd *exec.Cmd, err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return -1
}

// StderrTail returns up to maxBytes from the end of the captured stderr
// file, for diagnostics and failure-signature checks.
func StderrTail(path string, maxBytes int64) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return ""
	}
	if info.Size() > maxBytes {
		if _, err := f.Seek(info.Size()-maxBytes, io.SeekStart); err != nil {
			return ""
		}
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
