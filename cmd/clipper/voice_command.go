package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipper/internal/voice"
)

func newVoiceCommand(ctx *commandContext) *cobra.Command {
	var opts voice.Options

	cmd := &cobra.Command{
		Use:   "voice <text...>",
		Short: "Generate a placeholder voiceover clip",
		Long: "Write a silent MP3 sized to the spoken length of the text.\n\n" +
			"Clips are cached by text and options; stale clips are pruned at startup.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clip, err := ctx.voiceService().Generate(cmd.Context(), strings.Join(args, " "), opts)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, clip)
			}
			out := cmd.OutOrStdout()
			p := newPalette(out)
			fmt.Fprintln(out, p.field("Clip", clip.AudioPath))
			fmt.Fprintln(out, p.field("Duration", fmt.Sprintf("%ds", clip.DurationSeconds)))
			fmt.Fprintln(out, p.field("Cached", yesNo(clip.Cached)))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Voice, "voice", "default", "Voice name")
	cmd.Flags().Float64Var(&opts.Speed, "speed", 1, "Speaking rate multiplier")
	cmd.Flags().Float64Var(&opts.Pitch, "pitch", 1, "Pitch multiplier")
	cmd.Flags().StringVar(&opts.Emotion, "emotion", "neutral", "Delivery emotion")
	return cmd
}
