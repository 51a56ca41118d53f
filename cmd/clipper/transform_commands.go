package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipper/internal/textutil"
	"clipper/internal/transform"
)

func newVerticalCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "vertical <video>",
		Short: "Crop a video to a centered 9:16 frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := ctx.transformer().ToVertical(cmd.Context(), args[0])
			return reportTransform(ctx, cmd, "Vertical", result, err)
		},
	}
}

func newBurnCommand(ctx *commandContext) *cobra.Command {
	var output, style string

	cmd := &cobra.Command{
		Use:   "burn <video> <subtitles>",
		Short: "Render subtitles into a video with a caption style",
		Long: "Render a subtitle file into the video frame.\n\nStyles: " +
			strings.Join(transform.StyleNames(), ", ") + ". Unknown styles use " + transform.DefaultStyle + ".",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := ctx.transformer().BurnSubtitles(cmd.Context(), transform.BurnRequest{
				VideoPath:    args[0],
				SubtitlePath: args[1],
				OutputPath:   output,
				Style:        style,
			})
			name, _ := transform.ResolveStyle(style)
			return reportTransform(ctx, cmd, "Burn ("+textutil.DisplayName(name)+")", result, err)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: output_dir/<name>_<style>_<timestamp>)")
	cmd.Flags().StringVar(&style, "style", transform.DefaultStyle, "Caption style")
	return cmd
}

func newExtractAudioCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "extract-audio <video>",
		Short: "Extract the audio track as MP3",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := ctx.transformer().ExtractAudio(cmd.Context(), args[0], output)
			return reportTransform(ctx, cmd, "Audio", result, err)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: next to the video)")
	return cmd
}

// reportTransform prints the result contract and returns err so the process
// exits non-zero on failure.
func reportTransform(ctx *commandContext, cmd *cobra.Command, label string, result transform.Result, err error) error {
	if ctx.jsonOutput() {
		if encErr := writeJSON(cmd, result); encErr != nil {
			return encErr
		}
		return err
	}
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	p := newPalette(out)
	fmt.Fprintln(out, p.status(label, statusOK, result.OutputPath))
	if result.Advisory != "" {
		fmt.Fprintln(out, p.status("Advisory", statusWarn, result.Advisory))
	}
	return nil
}
