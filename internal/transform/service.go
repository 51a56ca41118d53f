package transform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipper/internal/config"
	"clipper/internal/fileutil"
	"clipper/internal/history"
	"clipper/internal/logging"
	"clipper/internal/media/ffprobe"
	"clipper/internal/notifications"
	"clipper/internal/services"
	"clipper/internal/tools"
)

// verticalRatioLimit is the width/height ratio above which a burn input is
// flagged as not vertical.
const verticalRatioLimit = 0.6

// Result mirrors the success/error contract of every transform.
type Result struct {
	Success    bool   `json:"success"`
	OutputPath string `json:"output_path,omitempty"`
	Error      string `json:"error,omitempty"`
	// Advisory carries non-fatal notes such as a non-vertical burn input.
	Advisory string `json:"advisory,omitempty"`
}

// BurnRequest describes a subtitle burn. OutputPath and Style are optional.
type BurnRequest struct {
	VideoPath    string `json:"video_path"`
	SubtitlePath string `json:"subtitle_path"`
	OutputPath   string `json:"output_path,omitempty"`
	Style        string `json:"style,omitempty"`
}

// Recorder persists export outcomes. *history.Store satisfies it.
type Recorder interface {
	RecordExport(ctx context.Context, rec history.Export) (int64, error)
}

// Service runs transforms through the tools gateway.
type Service struct {
	gateway   *tools.Gateway
	ffmpeg    string
	prober    *ffprobe.Prober
	codec     string
	preset    string
	outputDir string
	recorder  Recorder
	notifier  notifications.Service
	now       func() time.Time
	logger    *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithRecorder records every export in history.
func WithRecorder(recorder Recorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// WithNotifier overrides the notification service built from config.
func WithNotifier(notifier notifications.Service) Option {
	return func(s *Service) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

// WithClock overrides the time source used for export file names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a transform service from cfg.
func NewService(cfg *config.Config, gateway *tools.Gateway, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		gateway:   gateway,
		ffmpeg:    cfg.Tools.FFmpeg,
		prober:    ffprobe.New(cfg.Tools.FFprobe, gateway),
		codec:     cfg.Tools.VideoCodec,
		preset:    cfg.Tools.VideoPreset,
		outputDir: cfg.Paths.OutputDir,
		notifier:  notifications.NewService(cfg),
		now:       time.Now,
		logger:    logging.NewComponentLogger(logger, "transform"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ToVertical crops videoPath to a centered 9:16 frame and writes
// <base>_vertical<ext> next to it, replacing any previous output.
func (s *Service) ToVertical(ctx context.Context, videoPath string) (Result, error) {
	ctx, logger := s.begin(ctx, "vertical")
	if err := s.preflight(ctx, "vertical", videoPath); err != nil {
		return s.finish(ctx, history.ExportVertical, videoPath, "", "", Result{}, err)
	}
	width, height, err := s.prober.VideoDimensions(ctx, videoPath)
	if err != nil {
		return s.finish(ctx, history.ExportVertical, videoPath, "", "", Result{}, err)
	}
	crop := VerticalCrop(width, height)
	output := VerticalOutputPath(videoPath)
	logger.Debug("vertical crop computed",
		logging.Int("width", width),
		logging.Int("height", height),
		logging.String("filter", crop.Filter()),
	)
	err = s.transcode(ctx, "vertical",
		"-i", videoPath,
		"-vf", crop.Filter(),
		"-c:v", s.codec,
		"-preset", s.preset,
		"-c:a", "copy",
		"-y", output,
	)
	return s.finish(ctx, history.ExportVertical, videoPath, output, "", Result{OutputPath: output}, err)
}

// BurnSubtitles renders req.SubtitlePath into the video with the named
// style. Without an output path the file goes to the configured output
// directory as <base>_<style>_<timestamp><ext>.
func (s *Service) BurnSubtitles(ctx context.Context, req BurnRequest) (Result, error) {
	ctx, logger := s.begin(ctx, "burn")
	styleName, forceStyle := ResolveStyle(req.Style)
	if err := s.preflight(ctx, "burn", req.VideoPath); err != nil {
		return s.finish(ctx, history.ExportBurn, req.VideoPath, "", styleName, Result{}, err)
	}
	if !fileutil.Exists(req.SubtitlePath) {
		err := services.Wrap(services.ErrNotFound, "transform", "burn", fmt.Sprintf("Subtitle file %q does not exist", req.SubtitlePath), nil)
		return s.finish(ctx, history.ExportBurn, req.VideoPath, "", styleName, Result{}, err)
	}

	output := strings.TrimSpace(req.OutputPath)
	if output == "" {
		output = s.BurnOutputPath(req.VideoPath, styleName)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		err = services.Wrap(services.ErrWorkspace, "transform", "burn", "Create output directory", err)
		return s.finish(ctx, history.ExportBurn, req.VideoPath, output, styleName, Result{}, err)
	}

	result := Result{OutputPath: output}
	if width, height, err := s.prober.VideoDimensions(ctx, req.VideoPath); err != nil {
		logger.Debug("dimension probe failed; skipping aspect advisory", logging.Error(err))
	} else if ratio := float64(width) / float64(height); ratio > verticalRatioLimit {
		result.Advisory = fmt.Sprintf("video is %dx%d (ratio %.2f) and does not look vertical; convert it first for best caption placement", width, height, ratio)
		logging.WarnWithContext(logger, "burn input is not vertical", "burn_not_vertical",
			logging.Float64("ratio", ratio),
			logging.String(logging.FieldErrorHint, "run clipper vertical before burning captions"),
			logging.String(logging.FieldImpact, "captions are rendered on the landscape frame"),
		)
	}

	filter := fmt.Sprintf("subtitles=%s:force_style='%s'", escapeFilterPath(req.SubtitlePath), forceStyle)
	err := s.transcode(ctx, "burn",
		"-i", req.VideoPath,
		"-vf", filter,
		"-c:v", s.codec,
		"-preset", s.preset,
		"-c:a", "copy",
		"-y", output,
	)
	return s.finish(ctx, history.ExportBurn, req.VideoPath, output, styleName, result, err)
}

// ExtractAudio writes the audio track of videoPath as MP3, to destPath or to
// <dir>/<base>.mp3 when destPath is empty.
func (s *Service) ExtractAudio(ctx context.Context, videoPath, destPath string) (Result, error) {
	ctx, _ = s.begin(ctx, "extract_audio")
	if err := s.preflight(ctx, "extract audio", videoPath); err != nil {
		return s.finish(ctx, history.ExportExtractAudio, videoPath, "", "", Result{}, err)
	}
	output := strings.TrimSpace(destPath)
	if output == "" {
		output = fileutil.ReplaceExt(videoPath, ".mp3")
	}
	err := s.transcode(ctx, "extract audio",
		"-i", videoPath,
		"-q:a", "0",
		"-map", "a",
		"-vn",
		"-y", output,
	)
	return s.finish(ctx, history.ExportExtractAudio, videoPath, output, "", Result{OutputPath: output}, err)
}

// VerticalOutputPath inserts _vertical before the extension.
func VerticalOutputPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return strings.TrimSuffix(videoPath, ext) + "_vertical" + ext
}

// BurnOutputPath names a burn export inside the output directory.
func (s *Service) BurnOutputPath(videoPath, style string) string {
	ext := filepath.Ext(videoPath)
	base := strings.TrimSuffix(filepath.Base(videoPath), ext)
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(s.now().UTC().Format("2006-01-02T15:04:05.000Z"))
	return filepath.Join(s.outputDir, fmt.Sprintf("%s_%s_%s%s", base, style, stamp, ext))
}

func (s *Service) begin(ctx context.Context, operation string) (context.Context, *slog.Logger) {
	ctx, _ = services.EnsureRequestID(ctx)
	ctx = services.WithStage(ctx, "transform")
	return ctx, logging.WithContext(ctx, s.logger).With(logging.String("operation", operation))
}

// preflight rejects a missing source before checking the transcoder.
func (s *Service) preflight(ctx context.Context, operation, videoPath string) error {
	if strings.TrimSpace(videoPath) == "" {
		return services.Wrap(services.ErrValidation, "transform", operation, "Video path is required", nil)
	}
	if !fileutil.Exists(videoPath) {
		return services.Wrap(services.ErrNotFound, "transform", operation, fmt.Sprintf("Video file %q does not exist", videoPath), nil)
	}
	if !s.gateway.Probe(ctx, s.ffmpeg, "-version") {
		return services.Wrap(services.ErrToolUnavailable, "transform", operation, fmt.Sprintf("Transcoder %q is not available", s.ffmpeg), nil)
	}
	return nil
}

func (s *Service) transcode(ctx context.Context, operation string, args ...string) error {
	res := s.gateway.Run(ctx, s.ffmpeg, args...)
	if res.ExitSucceeded {
		return nil
	}
	marker := services.ErrExternalTool
	if res.TimedOut {
		marker = services.ErrTimeout
	}
	return services.Wrap(marker, "transform", operation, "Transcoder failed", errors.New(stderrTail(res.Stderr)))
}

// finish logs and records the outcome and fills the Result contract.
func (s *Service) finish(ctx context.Context, kind history.ExportKind, source, output, style string, result Result, err error) (Result, error) {
	logger := logging.WithContext(ctx, s.logger).With(logging.String("operation", string(kind)))
	result.Success = err == nil
	if err != nil {
		result.Error = err.Error()
		logging.ErrorWithContext(logger, "transform failed", "transform_failed",
			logging.String("source", source),
			logging.String(logging.FieldErrorHint, hintFor(err)),
			logging.Error(err),
		)
	} else {
		logger.Info("transform finished",
			logging.String(logging.FieldEventType, "transform_finished"),
			logging.String("source", source),
			logging.String("output", output),
		)
	}
	if s.recorder != nil && strings.TrimSpace(source) != "" {
		requestID, _ := services.RequestIDFromContext(ctx)
		if _, recErr := s.recorder.RecordExport(ctx, history.Export{
			RequestID:    requestID,
			Kind:         kind,
			SourcePath:   source,
			OutputPath:   output,
			Style:        style,
			Success:      result.Success,
			ErrorMessage: result.Error,
		}); recErr != nil {
			logger.Warn("export not recorded in history",
				logging.String(logging.FieldEventType, "history_write_failed"),
				logging.String(logging.FieldErrorHint, "check that history.db in log_dir is writable"),
				logging.Error(recErr),
			)
		}
	}
	s.notify(ctx, logger, kind, source, result)
	return result, err
}

func (s *Service) notify(ctx context.Context, logger *slog.Logger, kind history.ExportKind, source string, result Result) {
	event := notifications.EventExportCompleted
	if !result.Success {
		event = notifications.EventExportFailed
	}
	err := s.notifier.Publish(ctx, event, notifications.Payload{
		"kind":   string(kind),
		"source": filepath.Base(source),
		"output": result.OutputPath,
		"error":  result.Error,
	})
	if err != nil {
		logging.WarnWithContext(logger, "export notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic and network access"),
			logging.String(logging.FieldImpact, "no push was sent for this export"),
		)
	}
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return "check the input path"
	case errors.Is(err, services.ErrToolUnavailable):
		return "install ffmpeg or set tools.ffmpeg, then run clipper doctor"
	case errors.Is(err, services.ErrTimeout):
		return "raise tools.command_timeout_seconds"
	default:
		return `set logging.level = "debug" to see transcoder output`
	}
}

var (
	filterOptionEscaper = strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`)
	filterGraphEscaper  = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `[`, `\[`, `]`, `\]`, `,`, `\,`, `;`, `\;`)
)

// escapeFilterPath escapes a path for use as a filter option inside -vf.
// ffmpeg unescapes the value twice: once when parsing the filtergraph and
// again when the filter parses its options.
func escapeFilterPath(path string) string {
	return filterGraphEscaper.Replace(filterOptionEscaper.Replace(path))
}

func stderrTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}
