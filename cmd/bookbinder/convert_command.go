package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"bookbinder/internal/convert"
	"bookbinder/internal/identify"
	"bookbinder/internal/identify/openlibrary"
	"bookbinder/internal/ledger"
	"bookbinder/internal/preflight"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var deleteOriginals bool
	var keepOriginals bool
	var skipPreflight bool
	var outputDir string

	cmd := &cobra.Command{
		Use:   "convert <input-dir>",
		Short: "Convert every book directory under the input path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.Paths.LibraryDir = outputDir
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if deleteOriginals {
				cfg.Cleanup.DeleteOriginals = true
			}
			if keepOriginals {
				cfg.Cleanup.DeleteOriginals = false
			}

			// One conversion batch per machine; staging and the ledger are
			// not safe to share.
			lock := flock.New(filepath.Join(cfg.Paths.StateDir, "bookbinder.lock"))
			held, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire instance lock: %w", err)
			}
			if !held {
				return fmt.Errorf("another bookbinder run is already active")
			}
			defer lock.Unlock()

			if !skipPreflight {
				checks := preflight.RunAll(cmd.Context(), cfg)
				if failed := preflight.Failed(checks); len(failed) > 0 {
					for _, check := range checks {
						if !check.Passed {
							fmt.Fprintf(cmd.ErrOrStderr(), "preflight: %s: %s\n", check.Name, check.Detail)
						}
					}
					return fmt.Errorf("preflight failed: %s", strings.Join(failed, ", "))
				}
			}

			store, err := ledger.Open(cfg.Paths.StateDir)
			if err != nil {
				return err
			}
			defer store.Close()

			resolverOpts := []identify.Option{identify.WithLogger(logger)}
			if interactiveEligible() {
				resolverOpts = append(resolverOpts, identify.WithPrompter(newStdinPrompter()))
			}
			if cfg.Lookup.Enabled {
				lookup, err := openlibrary.New(cfg.Lookup.BaseURL, cfg.LookupTimeout())
				if err != nil {
					return err
				}
				resolverOpts = append(resolverOpts, identify.WithLookup(lookup))
			}

			orch := convert.New(cfg,
				convert.WithResolver(identify.New(cfg.FFmpeg.FFprobeBinary, resolverOpts...)),
				convert.WithLedger(store),
				convert.WithLogger(logger),
			)

			summary, results, err := orch.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderResultsTable(results))
			fmt.Fprintf(out, "Completed %d, skipped %d, failed %d (of %d)\n",
				summary.Completed, summary.Skipped, summary.Failed, summary.Total())

			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d books failed", summary.Failed, summary.Total())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output", "", "Override the configured library directory for this batch")
	cmd.Flags().BoolVar(&deleteOriginals, "delete-originals", false, "Delete source files after a verified conversion")
	cmd.Flags().BoolVar(&keepOriginals, "keep-originals", false, "Keep source files regardless of configuration")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip readiness checks before the batch")
	cmd.MarkFlagsMutuallyExclusive("delete-originals", "keep-originals")
	return cmd
}

func renderResultsTable(results []convert.BookResult) string {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, []string{
			filepath.Base(result.Dir),
			result.Identity.Author.Value,
			result.Identity.Title.Value,
			result.Status,
			result.Reason,
		})
	}
	return renderTable(
		[]string{"Directory", "Author", "Title", "Status", "Notes"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}
