package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Farman-RT/QuickSaver/internal/config"
	"github.com/Farman-RT/QuickSaver/internal/deps"
	"github.com/Farman-RT/QuickSaver/internal/ledger"
	"github.com/Farman-RT/QuickSaver/internal/notifications"
	"github.com/Farman-RT/QuickSaver/internal/services/ytdlp"
	"github.com/Farman-RT/QuickSaver/internal/workspace"
)

// lowSpaceThreshold flags scratch filesystems that cannot hold a typical long video.
const lowSpaceThreshold = 2 << 30

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, scratch space and the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines, failures := doctorReport(cmd.Context(), cfg, colorize)
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if failures > 0 {
				return fmt.Errorf("%d required checks failed", failures)
			}
			return nil
		},
	}
}

func doctorReport(ctx context.Context, cfg *config.Config, colorize bool) ([]string, int) {
	if ctx == nil {
		ctx = context.Background()
	}
	var lines []string
	failures := 0

	lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
	for _, status := range deps.Check(cfg) {
		kind, message := statusOK, status.Path
		switch {
		case !status.Available && status.Optional:
			kind, message = statusWarn, status.Detail
		case !status.Available:
			kind, message = statusError, status.Detail
			failures++
		}
		lines = append(lines, renderStatusLine(status.Name, kind, message, colorize))
	}
	if client, err := ytdlp.New(cfg.Fetch.Binary); err == nil {
		versionCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		version, verr := client.Version(versionCtx)
		cancel()
		if verr == nil {
			lines = append(lines, renderStatusLine("yt-dlp version", statusInfo, version, colorize))
		}
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Scratch", colorize)...)
	files, err := workspace.New(cfg.Paths.ScratchDir)
	if err != nil {
		lines = append(lines, renderStatusLine("Directory", statusError, err.Error(), colorize))
		failures++
	} else {
		lines = append(lines, renderStatusLine("Directory", statusOK, files.Dir(), colorize))
		if free, ferr := files.FreeBytes(); ferr != nil {
			lines = append(lines, renderStatusLine("Free space", statusWarn, ferr.Error(), colorize))
		} else if free < lowSpaceThreshold {
			lines = append(lines, renderStatusLine("Free space", statusWarn, formatBytes(free)+" (low)", colorize))
		} else {
			lines = append(lines, renderStatusLine("Free space", statusOK, formatBytes(free), colorize))
		}
		if list, lerr := files.List(); lerr == nil {
			lines = append(lines, renderStatusLine("Pending artifacts", statusInfo, fmt.Sprintf("%d", len(list)), colorize))
		}
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Ledger", colorize)...)
	store, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		lines = append(lines, renderStatusLine("Database", statusError, err.Error(), colorize))
		failures++
	} else {
		defer store.Close()
		count, cerr := store.Count(ctx)
		if cerr != nil {
			lines = append(lines, renderStatusLine("Database", statusError, cerr.Error(), colorize))
			failures++
		} else {
			lines = append(lines, renderStatusLine("Database", statusOK, fmt.Sprintf("%s (%d entries)", store.Path(), count), colorize))
		}
	}
	lines = append(lines, renderStatusLine("Admin view", statusInfo, yesNo(cfg.Server.AdminToken != ""), colorize))
	lines = append(lines, renderStatusLine("Notifications", statusInfo, yesNo(notifications.Enabled(cfg)), colorize))
	return lines, failures
}
