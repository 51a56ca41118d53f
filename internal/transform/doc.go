// Package transform derives new video files from acquired media.
//
// Each operation is a single transcoder invocation: ToVertical applies a
// centered 9:16 crop, BurnSubtitles renders a subtitle file into the picture
// with a named style, and ExtractAudio writes the audio track as MP3. The
// operations check that the source exists and that the transcoder is
// invocable before running, and never retry.
package transform
