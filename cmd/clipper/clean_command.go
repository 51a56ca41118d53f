package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"clipper/internal/acquisition"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove old download workspaces",
		Long: `Remove youtube_* working directories under paths.work_dir that have not
been modified within acquisition.workspace_max_age_days (or --older-than).
Exports in paths.output_dir are never touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			maxAge := cfg.WorkspaceMaxAge()
			if olderThan > 0 {
				maxAge = olderThan
			}
			result := acquisition.CleanStale(cfg.Paths.WorkDir, time.Now().Add(-maxAge), dryRun, ctx.ensureLogger())
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			p := newPalette(out)
			verb := "Removed"
			if dryRun {
				verb = "Would remove"
			}
			var reclaimed int64
			for _, ws := range result.Removed {
				reclaimed += ws.SizeBytes
				fmt.Fprintf(out, "%s %s (%s)\n", verb, ws.Path, humanize.IBytes(uint64(ws.SizeBytes)))
			}
			for _, failure := range result.Errors {
				fmt.Fprintln(out, p.status(failure.Path, statusError, failure.Error))
			}
			fmt.Fprintf(out, "%s %d workspace(s), %s\n", verb, len(result.Removed), humanize.IBytes(uint64(reclaimed)))
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d workspace(s) could not be removed", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Override the configured age threshold (e.g. 72h)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List what would be removed without deleting")
	return cmd
}
