package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Farman-RT/QuickSaver/internal/logging"
	"github.com/Farman-RT/QuickSaver/internal/workspace"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove unredeemed artifacts from the scratch directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if maxAge <= 0 {
				maxAge = cfg.SweepMaxAge()
			}
			if maxAge <= cfg.FetchTimeout() {
				return fmt.Errorf("--max-age %s must exceed the fetch timeout %s", maxAge, cfg.FetchTimeout())
			}
			files, err := workspace.New(cfg.Paths.ScratchDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				return printSweepCandidates(out, files, maxAge)
			}

			result := files.Sweep(cmd.Context(), maxAge, logging.NewNop())
			for _, path := range result.Removed {
				fmt.Fprintf(out, "removed %s\n", filepath.Base(path))
			}
			for _, failure := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed %s: %v\n", failure.Path, failure.Error)
			}
			fmt.Fprintf(out, "Removed %d of %d artifacts (%s reclaimed)\n", len(result.Removed), result.Considered, formatBytes(uint64(result.Reclaimed)))
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d artifacts could not be removed", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Remove artifacts older than this (default sweep.max_age_minutes)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List artifacts that would be removed")
	return cmd
}

func printSweepCandidates(out io.Writer, files *workspace.Manager, maxAge time.Duration) error {
	list, err := files.List()
	if err != nil {
		return err
	}
	cutoff := time.Now().Add(-maxAge)
	rows := make([][]string, 0, len(list))
	for _, artifact := range list {
		if !artifact.ModTime.Before(cutoff) {
			continue
		}
		rows = append(rows, []string{
			artifact.Name,
			formatBytes(uint64(artifact.Size)),
			time.Since(artifact.ModTime).Truncate(time.Second).String(),
		})
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "Nothing to sweep")
		return nil
	}
	fmt.Fprintln(out, renderTable([]string{"Artifact", "Size", "Age"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))
	return nil
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
