package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipper/internal/subtitles"
	"clipper/internal/vtt"
)

func newSubtitlesCommand(ctx *commandContext) *cobra.Command {
	var platformAuto bool
	var printCues bool

	cmd := &cobra.Command{
		Use:   "subtitles [media-file]",
		Short: "Resolve subtitles for a media file",
		Long: "Reuse, convert, extract, fetch, or synthesize a WebVTT file next to the media.\n\n" +
			"Without a media file the default placeholder cues are printed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc subtitles.Document
			if len(args) == 0 || args[0] == "" {
				doc = subtitles.Document{Cues: subtitles.DefaultCues(), Origin: subtitles.OriginDefault}
			} else {
				svc := ctx.subtitleService(ctx.pipeline())
				resolved, err := svc.Resolve(cmd.Context(), args[0], subtitles.Options{TryPlatformAuto: platformAuto})
				if err != nil {
					return err
				}
				doc = resolved
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, doc)
			}
			out := cmd.OutOrStdout()
			if printCues || doc.Path == "" {
				fmt.Fprint(out, vtt.Serialize(doc.Cues))
				return nil
			}
			p := newPalette(out)
			fmt.Fprintln(out, p.field("Origin", string(doc.Origin)))
			fmt.Fprintln(out, p.field("Path", doc.Path))
			fmt.Fprintln(out, p.field("Cues", fmt.Sprintf("%d", len(doc.Cues))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&platformAuto, "platform-auto", true, "Try platform auto-captions for downloaded files")
	cmd.Flags().BoolVar(&printCues, "print", false, "Print the resolved cues as WebVTT")
	return cmd
}
