package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"bookbinder/internal/cover"
	"bookbinder/internal/discover"
	"bookbinder/internal/identify"
	"bookbinder/internal/inventory"
	"bookbinder/internal/library"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <input-dir>",
		Short: "Preview how book directories would resolve, without converting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			dirs, err := discover.Candidates(args[0])
			if err != nil {
				return err
			}

			resolver := identify.New(cfg.FFmpeg.FFprobeBinary, identify.WithLogger(logger))
			rows := make([][]string, 0, len(dirs))
			for _, dir := range dirs {
				inv, invErr := inventory.Scan(dir, true)
				if invErr != nil {
					rows = append(rows, []string{filepath.Base(dir), "", "", "", "0", "unreadable"})
					continue
				}
				switch {
				case inv.Chaptered != "":
					rows = append(rows, []string{filepath.Base(dir), "", "", "", strconv.Itoa(len(inv.Files)), "already assembled"})
					continue
				case inv.Empty():
					rows = append(rows, []string{filepath.Base(dir), "", "", "", "0", "no audio"})
					continue
				}

				_, hasCover := cover.Find(dir)
				identity, resolveErr := resolver.Resolve(cmd.Context(), dir, inv.Files, hasCover)
				if resolveErr != nil {
					rows = append(rows, []string{filepath.Base(dir), "", "", "", strconv.Itoa(len(inv.Files)), "unresolvable"})
					continue
				}
				rows = append(rows, []string{
					filepath.Base(dir),
					identity.Author.Value,
					identity.Title.Value,
					library.CategoryPath(identity),
					strconv.Itoa(len(inv.Files)),
					"ready",
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Directory", "Author", "Title", "Category", "Files", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d candidate directories\n", len(dirs))
			return nil
		},
	}
	return cmd
}
