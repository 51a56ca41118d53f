package config

import (
	"fmt"
	"os"
	"strings"

	"clipper/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeBootstrap()
	c.normalizeAcquisition()
	c.normalizeSubtitles()
	c.normalizeVoice()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("CLIPPER_WORK_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.WorkDir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("CLIPPER_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutputDir = strings.TrimSpace(value)
	}

	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.work_dir", &c.Paths.WorkDir, defaultWorkDir},
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.bin_dir", &c.Paths.BinDir, defaultBinDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
		{"paths.voice_cache_dir", &c.Paths.VoiceCacheDir, defaultVoiceCacheDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.Downloader = fallbackString(c.Tools.Downloader, defaultDownloader)
	c.Tools.FFmpeg = fallbackString(c.Tools.FFmpeg, defaultFFmpeg)
	c.Tools.FFprobe = fallbackString(c.Tools.FFprobe, defaultFFprobe)
	c.Tools.VideoCodec = fallbackString(c.Tools.VideoCodec, defaultVideoCodec)
	c.Tools.VideoPreset = fallbackString(c.Tools.VideoPreset, defaultVideoPreset)
}

func (c *Config) normalizeBootstrap() {
	command := make([]string, 0, len(c.Bootstrap.PackageCommand))
	for _, part := range c.Bootstrap.PackageCommand {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			command = append(command, trimmed)
		}
	}
	c.Bootstrap.PackageCommand = command
	c.Bootstrap.ReleaseBaseURL = strings.TrimRight(fallbackString(c.Bootstrap.ReleaseBaseURL, defaultReleaseBaseURL), "/")
	if c.Bootstrap.DownloadTimeoutSeconds <= 0 {
		c.Bootstrap.DownloadTimeoutSeconds = defaultDownloadTimeoutSeconds
	}
}

func (c *Config) normalizeAcquisition() {
	c.Acquisition.VideoFormat = strings.TrimPrefix(strings.ToLower(fallbackString(c.Acquisition.VideoFormat, defaultVideoFormat)), ".")
	c.Acquisition.AudioFormat = strings.TrimPrefix(strings.ToLower(fallbackString(c.Acquisition.AudioFormat, defaultAudioFormat)), ".")
	c.Acquisition.SubtitleLanguage = language.Normalize(fallbackString(c.Acquisition.SubtitleLanguage, defaultSubtitleLanguage))
	c.Acquisition.OEmbedURL = fallbackString(c.Acquisition.OEmbedURL, defaultOEmbedURL)
	c.Acquisition.ThumbnailURLTemplate = fallbackString(c.Acquisition.ThumbnailURLTemplate, defaultThumbnailURLTemplate)
	c.Acquisition.WatchURLTemplate = fallbackString(c.Acquisition.WatchURLTemplate, defaultWatchURLTemplate)
	if c.Acquisition.WorkspaceMaxAgeDays <= 0 {
		c.Acquisition.WorkspaceMaxAgeDays = defaultWorkspaceMaxAgeDays
	}
}

func (c *Config) normalizeSubtitles() {
	if c.Subtitles.CadenceSeconds <= 0 {
		c.Subtitles.CadenceSeconds = defaultCadenceSeconds
	}
	if c.Subtitles.FallbackDurationSeconds <= 0 {
		c.Subtitles.FallbackDurationSeconds = defaultFallbackDurationSeconds
	}
	texts := make([]string, 0, len(c.Subtitles.PlaceholderTexts))
	for _, text := range c.Subtitles.PlaceholderTexts {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			texts = append(texts, trimmed)
		}
	}
	if len(texts) == 0 {
		texts = append(texts, defaultPlaceholderTexts...)
	}
	c.Subtitles.PlaceholderTexts = texts
}

func (c *Config) normalizeVoice() {
	if c.Voice.CacheMaxAgeDays <= 0 {
		c.Voice.CacheMaxAgeDays = defaultVoiceCacheMaxAgeDays
	}
	if c.Voice.WordsPerSecond <= 0 {
		c.Voice.WordsPerSecond = defaultWordsPerSecond
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNotificationTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}

func fallbackString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
