package convert

import (
	"context"

	"bookbinder/internal/discover"
	"bookbinder/internal/ledger"
	"bookbinder/internal/logging"
	"bookbinder/internal/services"
)

// Run discovers every candidate book directory under root and converts
// them sequentially. Book failures are recorded and the traversal
// continues; only an invalid root aborts the batch.
func (o *Orchestrator) Run(ctx context.Context, root string) (ledger.Summary, []BookResult, error) {
	ctx = services.WithRunID(ctx, o.runID)
	logger := logging.WithContext(ctx, o.logger)

	dirs, err := discover.Candidates(root)
	if err != nil {
		return ledger.Summary{}, nil, err
	}
	logger.Info("batch started",
		logging.String("root", root),
		logging.Int("candidates", len(dirs)))

	var summary ledger.Summary
	results := make([]BookResult, 0, len(dirs))
	for _, dir := range dirs {
		if ctx.Err() != nil {
			break
		}
		result, processErr := o.Process(ctx, dir)
		result.Status, result.Reason = mergeOutcome(result, processErr)

		switch result.Status {
		case ledger.StatusCompleted:
			summary.Completed++
			logger.Info("book done", logging.String("dir", dir), logging.String("output", result.OutputPath))
		case ledger.StatusSkipped:
			summary.Skipped++
			logger.Info("book skipped", logging.String("dir", dir), logging.String("reason", result.Reason))
		default:
			summary.Failed++
			logger.Error("book failed", logging.String("dir", dir), logging.String("reason", result.Reason))
		}

		if o.store != nil {
			record := ledger.Outcome{
				RunID:      o.runID,
				SourcePath: result.Dir,
				Author:     result.Identity.Author.Value,
				Title:      result.Identity.Title.Value,
				OutputPath: result.OutputPath,
				Status:     result.Status,
				Reason:     result.Reason,
			}
			if recordErr := o.store.Record(ctx, record); recordErr != nil {
				logger.Warn("ledger record failed", logging.Error(recordErr))
			}
		}
		results = append(results, result)
	}

	logger.Info("batch finished",
		logging.Int("completed", summary.Completed),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped))
	return summary, results, nil
}

// mergeOutcome folds a Process error into the result's status and reason,
// preserving any cleanup note a successful conversion attached.
func mergeOutcome(result BookResult, err error) (string, string) {
	status, reason := classify(err)
	if err == nil && result.Reason != "" {
		reason = result.Reason
	}
	return status, reason
}
