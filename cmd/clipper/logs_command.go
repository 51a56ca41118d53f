package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"clipper/internal/logging"
	"clipper/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var requestID string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent lines from clipper.log",
		Long: `Print the tail of the log file in paths.log_dir.

--request keeps only lines carrying the given correlation ID, which the API
returns in the X-Request-ID header.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if cfg == nil || strings.TrimSpace(cfg.Paths.LogDir) == "" {
				return errors.New("paths.log_dir is not configured")
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			needle := strings.TrimSpace(requestID)

			result, err := logs.Tail(path, logs.TailOptions{Offset: -1, Limit: lines, Contains: needle})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.jsonOutput() && !follow {
				return writeJSON(cmd, map[string]any{
					"path":   path,
					"lines":  nonNilLines(result.Lines),
					"offset": result.Offset,
				})
			}
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, result.Offset, needle, logs.DefaultPollInterval, func(batch []string) error {
				for _, line := range batch {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&requestID, "request", "", "Only show lines for this request ID")
	return cmd
}

func nonNilLines(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}
