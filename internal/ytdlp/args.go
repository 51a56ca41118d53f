package ytdlp

import (
	"path/filepath"
	"strings"
)

// Output template prefixes. Discovery uses them to tell assets apart.
const (
	AudioPrefix          = "audio_"
	ManualSubtitlePrefix = "manual_subs_"
	AutoSubtitlePrefix   = "auto_subs_"
	AllSubtitlePrefix    = "all_subs_"
	ThumbnailPrefix      = "thumb_"
)

// SubtitleMode selects which caption tracks a subtitle request asks for.
type SubtitleMode string

const (
	SubtitlesManual SubtitleMode = "manual"
	SubtitlesAuto   SubtitleMode = "auto"
	SubtitlesAll    SubtitleMode = "all"
)

// videoFormatSelector prefers a separate best video+audio pair in the target
// container and falls back to the best single file.
func videoFormatSelector(container string) string {
	audio := "m4a"
	if container != "mp4" {
		audio = container
	}
	return "bestvideo[ext=" + container + "]+bestaudio[ext=" + audio + "]/best[ext=" + container + "]/best"
}

// MetadataArgs requests the JSON info dump for a single video.
func MetadataArgs(url string) []string {
	return []string{"--dump-json", "--no-playlist", "--no-warnings", url}
}

// VideoArgs downloads the best combined video in container, merging if needed.
func VideoArgs(url, dir, container string) []string {
	container = normalizeExt(container, "mp4")
	return []string{
		url,
		"-o", filepath.Join(dir, "%(title)s.%(ext)s"),
		"-f", videoFormatSelector(container),
		"--merge-output-format", container,
		"--restrict-filenames",
	}
}

// AudioArgs extracts the audio track converted to format.
func AudioArgs(url, dir, format string) []string {
	return []string{
		url,
		"-o", filepath.Join(dir, AudioPrefix+"%(title)s.%(ext)s"),
		"-x", "--audio-format", normalizeExt(format, "mp3"),
		"--restrict-filenames",
	}
}

// SubtitleArgs requests caption tracks without downloading media.
func SubtitleArgs(url, dir, language string, mode SubtitleMode) []string {
	language = normalizeExt(language, "en")
	switch mode {
	case SubtitlesAuto:
		return []string{
			url,
			"--write-auto-sub",
			"--skip-download",
			"--sub-format", "vtt",
			"--sub-lang", language,
			"-o", filepath.Join(dir, AutoSubtitlePrefix+"%(title)s"),
			"--restrict-filenames",
		}
	case SubtitlesAll:
		return []string{
			url,
			"--all-subs",
			"--skip-download",
			"-o", filepath.Join(dir, AllSubtitlePrefix+"%(title)s"),
			"--restrict-filenames",
		}
	default:
		return []string{
			url,
			"--write-sub",
			"--skip-download",
			"--sub-format", "vtt",
			"--sub-lang", language,
			"-o", filepath.Join(dir, ManualSubtitlePrefix+"%(title)s"),
			"--restrict-filenames",
		}
	}
}

// ThumbnailArgs writes the thumbnail converted to JPEG.
func ThumbnailArgs(url, dir string) []string {
	return []string{
		url,
		"--write-thumbnail",
		"--skip-download",
		"--convert-thumbnails", "jpg",
		"-o", filepath.Join(dir, ThumbnailPrefix+"%(title)s"),
		"--restrict-filenames",
	}
}

// AutoCaptionArgs fetches auto-generated captions converted to VTT. The
// downloader appends ".<lang>.vtt" to outputBase.
func AutoCaptionArgs(watchURL, outputBase, language string) []string {
	return []string{
		"--write-auto-sub",
		"--skip-download",
		"--sub-lang", normalizeExt(language, "en"),
		"--convert-subs", "vtt",
		"--output", outputBase,
		watchURL,
	}
}

func normalizeExt(value, fallback string) string {
	value = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), "."))
	if value == "" {
		return fallback
	}
	return value
}
