// Package voice produces placeholder voiceover clips.
//
// Clips are silent MP3 files whose length follows the word count of the
// requested text. They are cached by a hash of the text and options and the
// cache is pruned by an explicit Cleanup call made once at process start.
package voice

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"clipper/internal/config"
	"clipper/internal/logging"
	"clipper/internal/services"
	"clipper/internal/tools"
)

// bytesPerSecond approximates the bitrate of cached clips when estimating
// their duration from file size.
const bytesPerSecond = 16000

// Options shape a voiceover request. They are part of the cache key.
type Options struct {
	Voice   string  `json:"voice"`
	Speed   float64 `json:"speed"`
	Pitch   float64 `json:"pitch"`
	Emotion string  `json:"emotion"`
}

func (o Options) normalized() Options {
	if strings.TrimSpace(o.Voice) == "" {
		o.Voice = "default"
	}
	if o.Speed <= 0 || math.IsNaN(o.Speed) {
		o.Speed = 1
	}
	if o.Pitch <= 0 || math.IsNaN(o.Pitch) {
		o.Pitch = 1
	}
	if strings.TrimSpace(o.Emotion) == "" {
		o.Emotion = "neutral"
	}
	return o
}

// Clip is a generated or cached voiceover file.
type Clip struct {
	AudioPath       string `json:"audio_path"`
	DurationSeconds int    `json:"duration_seconds"`
	Cached          bool   `json:"cached"`
}

// Service generates clips into a cache directory.
type Service struct {
	gateway        *tools.Gateway
	ffmpeg         string
	cacheDir       string
	maxAge         time.Duration
	wordsPerSecond float64
	logger         *slog.Logger
}

// NewService constructs a voice service from cfg.
func NewService(cfg *config.Config, gateway *tools.Gateway, logger *slog.Logger) *Service {
	wps := cfg.Voice.WordsPerSecond
	if wps <= 0 {
		wps = config.Default().Voice.WordsPerSecond
	}
	return &Service{
		gateway:        gateway,
		ffmpeg:         cfg.Tools.FFmpeg,
		cacheDir:       cfg.Paths.VoiceCacheDir,
		maxAge:         time.Duration(cfg.Voice.CacheMaxAgeDays) * 24 * time.Hour,
		wordsPerSecond: wps,
		logger:         logging.NewComponentLogger(logger, "voice"),
	}
}

// CacheKey hashes text and the normalized options.
func CacheKey(text string, opts Options) string {
	encoded, _ := json.Marshal(opts.normalized())
	sum := md5.Sum([]byte(text + string(encoded)))
	return hex.EncodeToString(sum[:])
}

// EstimateDuration returns whole seconds needed to speak text at
// wordsPerSecond scaled by speed, never less than one.
func EstimateDuration(text string, wordsPerSecond, speed float64) int {
	words := len(strings.Fields(text))
	if wordsPerSecond <= 0 || speed <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(float64(words)/(wordsPerSecond*speed))))
}

// Generate returns a clip for text, reusing the cached file when present. A
// transcoder failure leaves an empty file in place of the clip; empty files
// are not cache hits, so the next call tries again.
func (s *Service) Generate(ctx context.Context, text string, opts Options) (Clip, error) {
	if strings.TrimSpace(text) == "" {
		return Clip{}, services.Wrap(services.ErrValidation, "voice", "generate", "Text is required", nil)
	}
	opts = opts.normalized()
	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return Clip{}, services.Wrap(services.ErrWorkspace, "voice", "generate", "Create voice cache directory", err)
	}
	path := filepath.Join(s.cacheDir, CacheKey(text, opts)+".mp3")
	logger := logging.WithContext(ctx, s.logger)

	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		duration := max(1, int(info.Size()/bytesPerSecond))
		logger.Debug("voice clip cache hit", logging.String("path", path), logging.Int("duration_seconds", duration))
		return Clip{AudioPath: path, DurationSeconds: duration, Cached: true}, nil
	}

	duration := EstimateDuration(text, s.wordsPerSecond, opts.Speed)
	res := s.gateway.Run(ctx, s.ffmpeg,
		"-f", "lavfi",
		"-i", "anullsrc=r=44100:cl=mono",
		"-t", strconv.Itoa(duration),
		"-q:a", "9",
		"-acodec", "libmp3lame",
		"-y", path,
	)
	if !res.ExitSucceeded {
		logging.WarnWithContext(logger, "voice clip generation failed; writing empty clip", "voice_generate_failed",
			logging.String("stderr", strings.TrimSpace(res.Stderr)),
			logging.String(logging.FieldErrorHint, "check that ffmpeg supports lavfi and libmp3lame"),
			logging.String(logging.FieldImpact, "voiceover clip is empty"),
		)
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return Clip{}, services.Wrap(services.ErrWorkspace, "voice", "generate", "Write empty clip", err)
		}
	}
	logger.Info("voice clip generated",
		logging.String(logging.FieldEventType, "voice_generated"),
		logging.String("path", path),
		logging.Int("duration_seconds", duration),
	)
	return Clip{AudioPath: path, DurationSeconds: duration}, nil
}

// Cleanup removes cached clips last modified before now minus the configured
// maximum age and returns how many were removed.
func (s *Service) Cleanup(now time.Time) int {
	if s.maxAge <= 0 {
		return 0
	}
	pruned := logging.PruneFiles(s.logger, s.cacheDir, "*.mp3", now.Add(-s.maxAge))
	if pruned.Removed > 0 {
		s.logger.Info("voice cache pruned",
			logging.String(logging.FieldEventType, "voice_cache_pruned"),
			logging.Int("removed", pruned.Removed),
			logging.Size("freed", pruned.Bytes),
		)
	}
	return pruned.Removed
}
