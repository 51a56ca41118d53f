package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"clipper/internal/language"
	"clipper/internal/services"
	"clipper/internal/tools"
)

// Runner executes a probe command. *tools.Gateway satisfies it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) tools.Result
}

// Result represents the parsed output from an ffprobe query.
type Result struct {
	Streams []Stream `json:"streams"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`

	Tags map[string]string `json:"tags,omitempty"`
}

// Prober issues ffprobe queries through a Runner.
type Prober struct {
	binary string
	runner Runner
}

// New returns a Prober invoking binary (default "ffprobe") via runner.
func New(binary string, runner Runner) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary, runner: runner}
}

// Streams lists the index, codec type, and language tag of every stream in
// path.
func (p *Prober) Streams(ctx context.Context, path string) ([]Stream, error) {
	result, err := p.query(ctx, "streams", path, "-v", "error", "-show_entries", "stream=index,codec_type:stream_tags=language", "-of", "json")
	if err != nil {
		return nil, err
	}
	return result.Streams, nil
}

// VideoDimensions returns the width and height of the first video stream.
func (p *Prober) VideoDimensions(ctx context.Context, path string) (int, int, error) {
	result, err := p.query(ctx, "dimensions", path, "-v", "error", "-select_streams", "v:0", "-show_entries", "stream=width,height,duration", "-of", "json")
	if err != nil {
		return 0, 0, err
	}
	if len(result.Streams) == 0 {
		return 0, 0, services.Wrap(services.ErrValidation, "ffprobe", "dimensions", "No video stream found", nil)
	}
	stream := result.Streams[0]
	if stream.Width <= 0 || stream.Height <= 0 {
		return 0, 0, services.Wrap(services.ErrValidation, "ffprobe", "dimensions",
			fmt.Sprintf("Invalid dimensions %dx%d", stream.Width, stream.Height), nil)
	}
	return stream.Width, stream.Height, nil
}

// Duration returns the container duration in seconds. A missing, zero, or
// unparsable value is reported as an error.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	if err := p.checkPath(path); err != nil {
		return 0, err
	}
	result := p.runner.Run(ctx, p.binary, "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	if !result.ExitSucceeded {
		return 0, services.Wrap(services.ErrExternalTool, "ffprobe", "duration", "Probe failed", errors.New(strings.TrimSpace(result.Stderr)))
	}
	seconds := parseFloat(result.Stdout)
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0, services.Wrap(services.ErrValidation, "ffprobe", "duration",
			fmt.Sprintf("Unusable duration %q", strings.TrimSpace(result.Stdout)), nil)
	}
	return seconds, nil
}

func (p *Prober) query(ctx context.Context, operation, path string, args ...string) (Result, error) {
	if err := p.checkPath(path); err != nil {
		return Result{}, err
	}
	result := p.runner.Run(ctx, p.binary, append(args, path)...)
	if !result.ExitSucceeded {
		return Result{}, services.Wrap(services.ErrExternalTool, "ffprobe", operation, "Probe failed", errors.New(strings.TrimSpace(result.Stderr)))
	}
	var parsed Result
	if err := json.Unmarshal([]byte(result.Stdout), &parsed); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "ffprobe", operation, "Parse probe output", err)
	}
	return parsed, nil
}

func (p *Prober) checkPath(path string) error {
	if p == nil || p.runner == nil {
		return services.Wrap(services.ErrConfiguration, "ffprobe", "probe", "Prober not configured", nil)
	}
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrValidation, "ffprobe", "probe", "Empty path", nil)
	}
	return nil
}

// HasSubtitleStream reports whether any stream is a subtitle track and
// returns the first such stream.
func HasSubtitleStream(streams []Stream) (Stream, bool) {
	for _, stream := range streams {
		if strings.EqualFold(stream.CodecType, "subtitle") {
			return stream, true
		}
	}
	return Stream{}, false
}

// PreferredSubtitleStream returns the first subtitle stream tagged with lang,
// falling back to the first subtitle stream of any language.
func PreferredSubtitleStream(streams []Stream, lang string) (Stream, bool) {
	if strings.TrimSpace(lang) != "" {
		for _, stream := range streams {
			if strings.EqualFold(stream.CodecType, "subtitle") && language.Matches(language.FromTags(stream.Tags), lang) {
				return stream, true
			}
		}
	}
	return HasSubtitleStream(streams)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
