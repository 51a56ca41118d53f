package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipper/internal/history"
	"clipper/internal/textutil"
)

const historyTimeLayout = "2006-01-02 15:04"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent acquisitions and exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.historyStore()
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			acquisitions, err := store.RecentAcquisitions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			exports, err := store.RecentExports(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"acquisitions": acquisitions,
					"exports":      exports,
				})
			}

			out := cmd.OutOrStdout()
			p := newPalette(out)
			fmt.Fprintln(out, p.heading("Acquisitions"))
			if len(acquisitions) == 0 {
				fmt.Fprintln(out, p.render(p.muted, "  none"))
			} else {
				fmt.Fprintln(out, renderTable(
					[]column{{title: "ID", right: true}, {title: "When"}, {title: "Video"},
						{title: "Title", width: 40}, {title: "Assets"}, {title: "Directory"}},
					acquisitionRows(acquisitions),
				))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, p.heading("Exports"))
			if len(exports) == 0 {
				fmt.Fprintln(out, p.render(p.muted, "  none"))
			} else {
				fmt.Fprintln(out, renderTable(
					[]column{{title: "ID", right: true}, {title: "When"}, {title: "Kind"},
						{title: "Style"}, {title: "OK"}, {title: "Output"}},
					exportRows(exports),
				))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of rows per table")
	return cmd
}

func acquisitionRows(rows []history.Acquisition) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{
			strconv.FormatInt(row.ID, 10),
			row.CreatedAt.Local().Format(historyTimeLayout),
			row.VideoID,
			row.Title,
			assetFlags(row),
			row.WorkingDirectory,
		})
	}
	return out
}

func exportRows(rows []history.Export) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		output := row.OutputPath
		if !row.Success {
			output = row.ErrorMessage
		}
		out = append(out, []string{
			strconv.FormatInt(row.ID, 10),
			row.CreatedAt.Local().Format(historyTimeLayout),
			textutil.DisplayName(string(row.Kind)),
			textutil.DisplayName(row.Style),
			yesNo(row.Success),
			output,
		})
	}
	return out
}

// assetFlags abbreviates present assets as V/A/S/T.
func assetFlags(row history.Acquisition) string {
	flags := []byte("----")
	if row.HasVideo {
		flags[0] = 'V'
	}
	if row.HasAudio {
		flags[1] = 'A'
	}
	if row.HasSubtitles {
		flags[2] = 'S'
	}
	if row.HasThumbnail {
		flags[3] = 'T'
	}
	return string(flags)
}
