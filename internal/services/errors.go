package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for book-scoped failures. Every pipeline error wraps one
// of these so callers can classify outcomes with errors.Is instead of string
// matching.
var (
	// ErrNoAudioFiles marks a book directory with zero recognized audio files.
	ErrNoAudioFiles = errors.New("no audio files")
	// ErrMetadataInsufficient marks a book whose author or title could not be resolved.
	ErrMetadataInsufficient = errors.New("metadata insufficient")
	// ErrSubprocessTimeout marks an external tool terminated by the watchdog.
	ErrSubprocessTimeout = errors.New("subprocess timeout")
	// ErrSubprocessFailed marks an external tool that exited non-zero.
	ErrSubprocessFailed = errors.New("subprocess failed")
	// ErrOutputTooSmall marks an artifact implausibly small versus its sources;
	// it always blocks destructive cleanup.
	ErrOutputTooSmall = errors.New("output too small")
	// ErrDirectoryUnwritable marks a target directory that cannot be written.
	ErrDirectoryUnwritable = errors.New("directory unwritable")
	// ErrAlreadyProcessed marks a book that was skipped, not failed.
	ErrAlreadyProcessed = errors.New("already processed")
	// ErrInvalidInputPath is fatal at startup; it is the only error that
	// aborts a whole batch.
	ErrInvalidInputPath = errors.New("invalid input path")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrSubprocessFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsSkip reports whether the error represents a non-failure skip outcome.
func IsSkip(err error) bool {
	return errors.Is(err, ErrAlreadyProcessed)
}

// Details extracts a human-readable message from a wrapped pipeline error.
type ErrorDetails struct {
	Message string
}

// Details returns the message portion of a pipeline error for summaries.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	msg := err.Error()
	for _, marker := range []error{
		ErrNoAudioFiles,
		ErrMetadataInsufficient,
		ErrSubprocessTimeout,
		ErrSubprocessFailed,
		ErrOutputTooSmall,
		ErrDirectoryUnwritable,
		ErrAlreadyProcessed,
		ErrInvalidInputPath,
	} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return ErrorDetails{Message: strings.TrimPrefix(msg, prefix)}
		}
	}
	return ErrorDetails{Message: msg}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
