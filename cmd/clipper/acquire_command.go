package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipper/internal/acquisition"
)

func newAcquireCommand(ctx *commandContext) *cobra.Command {
	var noVideo, noAudio, noSubtitles bool

	cmd := &cobra.Command{
		Use:   "acquire <url>",
		Short: "Download video, audio, subtitles, and thumbnail for a URL",
		Long: "Download the requested assets into a fresh working directory.\n\n" +
			"When the downloader cannot be made available the command still reports\n" +
			"title, channel, and thumbnail from the platform's public metadata endpoint.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := acquisition.Options{
				DownloadVideo:     !noVideo,
				DownloadAudio:     !noAudio,
				DownloadSubtitles: !noSubtitles,
			}
			result, err := ctx.pipeline().Acquire(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			printAcquisition(cmd, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noVideo, "no-video", false, "Skip the video download")
	cmd.Flags().BoolVar(&noAudio, "no-audio", false, "Skip the audio download")
	cmd.Flags().BoolVar(&noSubtitles, "no-subtitles", false, "Skip subtitle download and synthesis")
	return cmd
}

func printAcquisition(cmd *cobra.Command, result acquisition.Result) {
	out := cmd.OutOrStdout()
	p := newPalette(out)

	fmt.Fprintln(out, p.heading(result.Title))
	fmt.Fprintln(out, p.field("Video ID", result.VideoID))
	fmt.Fprintln(out, p.field("Channel", result.Channel))
	if result.DurationSeconds > 0 {
		fmt.Fprintln(out, p.field("Duration", fmt.Sprintf("%.0fs", result.DurationSeconds)))
	}
	fmt.Fprintln(out, p.field("Uploaded", result.UploadDate))
	fmt.Fprintln(out, p.field("Directory", result.WorkingDirectory))
	for _, asset := range result.Assets {
		label := strings.ToUpper(string(asset.Kind[:1])) + string(asset.Kind[1:])
		if asset.Present {
			fmt.Fprintln(out, p.status(label, statusOK, asset.Path))
		} else {
			fmt.Fprintln(out, p.status(label, statusWarn, "not downloaded"))
		}
	}
	if result.Warning != "" {
		fmt.Fprintln(out, p.render(p.warn, "Warning: "+result.Warning))
	}
}
