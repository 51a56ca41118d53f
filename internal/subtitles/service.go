package subtitles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"clipper/internal/config"
	"clipper/internal/fileutil"
	"clipper/internal/logging"
	"clipper/internal/media/ffprobe"
	"clipper/internal/services"
	"clipper/internal/tools"
	"clipper/internal/vtt"
	"clipper/internal/ytdlp"
)

// CaptionFetcher requests platform auto-captions. *ytdlp.Client satisfies it.
type CaptionFetcher interface {
	FetchAutoCaptions(ctx context.Context, videoID, outputBase string) tools.Result
	CaptionLanguage() string
}

// Options tunes a single Resolve call.
type Options struct {
	// TryPlatformAuto enables the auto-caption fetch for files that look
	// platform-sourced.
	TryPlatformAuto bool
}

// Service resolves subtitles for media files.
type Service struct {
	gateway  *tools.Gateway
	ffmpeg   string
	prober   *ffprobe.Prober
	captions CaptionFetcher
	language string
	cadence  float64
	fallback float64
	texts    []string
	pick     func(n int) int
	logger   *slog.Logger
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithCaptionFetcher enables the platform auto-caption strategy.
func WithCaptionFetcher(fetcher CaptionFetcher) ServiceOption {
	return func(s *Service) {
		s.captions = fetcher
	}
}

// WithPicker overrides the placeholder text chooser (used in tests).
func WithPicker(pick func(n int) int) ServiceOption {
	return func(s *Service) {
		if pick != nil {
			s.pick = pick
		}
	}
}

// NewService constructs a subtitle service invoking tools through gateway.
func NewService(cfg *config.Config, gateway *tools.Gateway, logger *slog.Logger, opts ...ServiceOption) *Service {
	defaults := config.Default()
	if cfg == nil {
		cfg = &defaults
	}
	svc := &Service{
		gateway:  gateway,
		ffmpeg:   cfg.Tools.FFmpeg,
		prober:   ffprobe.New(cfg.Tools.FFprobe, gateway),
		language: cfg.Acquisition.SubtitleLanguage,
		cadence:  cfg.Subtitles.CadenceSeconds,
		fallback: cfg.Subtitles.FallbackDurationSeconds,
		texts:    append([]string(nil), cfg.Subtitles.PlaceholderTexts...),
		pick:     rand.IntN,
		logger:   logging.NewComponentLogger(logger, "subtitles"),
	}
	if svc.cadence <= 0 {
		svc.cadence = defaults.Subtitles.CadenceSeconds
	}
	if svc.fallback <= 0 {
		svc.fallback = defaults.Subtitles.FallbackDurationSeconds
	}
	if len(svc.texts) == 0 {
		svc.texts = defaults.Subtitles.PlaceholderTexts
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type strategy struct {
	name   string
	origin Origin
	run    func(ctx context.Context, mediaPath, canonical string) ([]vtt.Cue, error)
}

// Resolve returns cues for mediaPath. Strategies run strictly in order and
// only a missing media file is an error; placeholder synthesis always
// succeeds.
func (s *Service) Resolve(ctx context.Context, mediaPath string, opts Options) (Document, error) {
	if s == nil {
		return Document{}, services.Wrap(services.ErrConfiguration, "subtitles", "init", "Subtitle service unavailable", nil)
	}
	ctx = services.WithStage(ctx, "subtitles")
	mediaPath = strings.TrimSpace(mediaPath)
	if mediaPath == "" {
		return Document{}, services.Wrap(services.ErrValidation, "subtitles", "resolve", "Media path is required", nil)
	}
	if !fileutil.Exists(mediaPath) {
		return Document{}, services.Wrap(services.ErrNotFound, "subtitles", "resolve", fmt.Sprintf("Media file %q does not exist", mediaPath), nil)
	}
	logger := logging.WithContext(ctx, s.logger).With(logging.String("media", mediaPath))
	canonical := CanonicalPath(mediaPath)

	strategies := []strategy{
		{name: "reuse", origin: OriginReused, run: s.reuse},
		{name: "sibling", origin: OriginConverted, run: s.convertSibling},
		{name: "embedded", origin: OriginEmbedded, run: s.extractEmbedded},
	}
	if opts.TryPlatformAuto {
		strategies = append(strategies, strategy{name: "platform_auto", origin: OriginPlatform, run: s.fetchPlatform})
	}
	for _, st := range strategies {
		cues, err := st.run(ctx, mediaPath, canonical)
		if err == nil {
			logger.Info("subtitles resolved",
				logging.String(logging.FieldEventType, "subtitles_resolved"),
				logging.String("origin", string(st.origin)),
				logging.Int("cues", len(cues)),
			)
			return Document{Cues: cues, Origin: st.origin, Path: canonical}, nil
		}
		logger.Debug("subtitle strategy skipped",
			logging.String("strategy", st.name),
			logging.Error(err),
		)
	}

	cues := s.Synthesize(ctx, mediaPath)
	logging.WarnWithContext(logger, "no caption source found; synthesized placeholder cues", "subtitles_placeholder",
		logging.Int("cues", len(cues)),
		logging.String(logging.FieldErrorHint, "add a sibling .srt/.vtt next to the media or enable platform auto-captions"),
		logging.String(logging.FieldImpact, "captions are ambient placeholders, not speech"),
	)
	return Document{Cues: cues, Origin: OriginPlaceholder, Path: canonical}, nil
}

// Synthesize builds placeholder cues from the probed duration of mediaPath,
// using the configured fallback duration when probing fails, and writes them
// to the canonical path. A write failure is logged; the cues are returned
// regardless.
func (s *Service) Synthesize(ctx context.Context, mediaPath string) []vtt.Cue {
	logger := logging.WithContext(ctx, s.logger)
	duration, err := s.prober.Duration(ctx, mediaPath)
	if err != nil {
		logger.Debug("duration probe failed; using fallback duration",
			logging.Float64("fallback_seconds", s.fallback),
			logging.Error(err),
		)
		duration = s.fallback
	}
	cues := PlaceholderCues(duration, s.cadence, s.texts, s.pick)
	if err := vtt.WriteFile(CanonicalPath(mediaPath), cues); err != nil {
		logging.WarnWithContext(logger, "placeholder subtitles not persisted", "subtitles_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check write permission on the media directory"),
			logging.String(logging.FieldImpact, "placeholder cues are regenerated on the next request"),
		)
	}
	return cues
}

func (s *Service) reuse(_ context.Context, _ string, canonical string) ([]vtt.Cue, error) {
	if !fileutil.Exists(canonical) {
		return nil, os.ErrNotExist
	}
	return readCues(canonical)
}

// siblingPaths lists the caption files probed next to the media, in order.
func siblingPaths(mediaPath string) []string {
	base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
	return []string{base + ".srt", base + ".en.vtt", base + ".en.srt"}
}

// convertSibling adopts the first sibling caption file found. Only that file
// is tried; a failed conversion moves on to the next strategy.
func (s *Service) convertSibling(ctx context.Context, mediaPath, canonical string) ([]vtt.Cue, error) {
	for _, candidate := range siblingPaths(mediaPath) {
		if !fileutil.Exists(candidate) {
			continue
		}
		if strings.EqualFold(filepath.Ext(candidate), ".vtt") {
			if err := fileutil.CopyFile(candidate, canonical); err != nil {
				return nil, fmt.Errorf("copy %s: %w", filepath.Base(candidate), err)
			}
		} else if err := s.transcode(ctx, "convert", "-i", candidate, "-y", canonical); err != nil {
			return nil, err
		}
		return adopt(canonical)
	}
	return nil, os.ErrNotExist
}

func (s *Service) extractEmbedded(ctx context.Context, mediaPath, canonical string) ([]vtt.Cue, error) {
	streams, err := s.prober.Streams(ctx, mediaPath)
	if err != nil {
		return nil, err
	}
	stream, ok := ffprobe.PreferredSubtitleStream(streams, s.language)
	if !ok {
		return nil, errors.New("no embedded subtitle stream")
	}
	if err := s.transcode(ctx, "extract", "-i", mediaPath, "-map", "0:"+strconv.Itoa(stream.Index), "-y", canonical); err != nil {
		return nil, err
	}
	return adopt(canonical)
}

func (s *Service) fetchPlatform(ctx context.Context, mediaPath, canonical string) ([]vtt.Cue, error) {
	if s.captions == nil {
		return nil, errors.New("no caption fetcher configured")
	}
	if !strings.Contains(strings.ToLower(mediaPath), "youtube") {
		return nil, errors.New("media path does not look platform-sourced")
	}
	videoID, ok := ytdlp.VideoIDFromFilename(mediaPath)
	if !ok {
		return nil, errors.New("no video identifier in file name")
	}
	base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
	result := s.captions.FetchAutoCaptions(ctx, videoID, base)
	if !result.ExitSucceeded {
		return nil, services.Wrap(services.ErrExternalTool, "subtitles", "platform captions", "Auto-caption request failed", errors.New(strings.TrimSpace(result.Stderr)))
	}
	produced := base + "." + s.captions.CaptionLanguage() + ".vtt"
	if !fileutil.Exists(produced) {
		return nil, fmt.Errorf("auto-caption file %s not produced", filepath.Base(produced))
	}
	if err := fileutil.CopyFile(produced, canonical); err != nil {
		return nil, fmt.Errorf("copy auto-captions: %w", err)
	}
	return adopt(canonical)
}

func (s *Service) transcode(ctx context.Context, operation string, args ...string) error {
	result := s.gateway.Run(ctx, s.ffmpeg, args...)
	if !result.ExitSucceeded {
		return services.Wrap(services.ErrExternalTool, "subtitles", operation, "Transcoder failed", errors.New(strings.TrimSpace(result.Stderr)))
	}
	return nil
}

func readCues(path string) ([]vtt.Cue, error) {
	cues, err := vtt.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(cues) == 0 {
		return nil, fmt.Errorf("%s has no cues", filepath.Base(path))
	}
	return cues, nil
}

// adopt reads a freshly produced canonical file. An unusable file is removed
// so it cannot be reused later.
func adopt(canonical string) ([]vtt.Cue, error) {
	cues, err := readCues(canonical)
	if err != nil {
		_ = os.Remove(canonical)
		return nil, err
	}
	return cues, nil
}
