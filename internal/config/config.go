package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	WorkDir       string `toml:"work_dir"`
	OutputDir     string `toml:"output_dir"`
	BinDir        string `toml:"bin_dir"`
	LogDir        string `toml:"log_dir"`
	VoiceCacheDir string `toml:"voice_cache_dir"`
	APIBind       string `toml:"api_bind"`
}

// Tools names the external binaries and how they are invoked.
type Tools struct {
	Downloader            string `toml:"downloader"`
	FFmpeg                string `toml:"ffmpeg"`
	FFprobe               string `toml:"ffprobe"`
	CommandTimeoutSeconds int    `toml:"command_timeout_seconds"`
	VideoCodec            string `toml:"video_codec"`
	VideoPreset           string `toml:"video_preset"`
}

// Bootstrap controls how a missing downloader is acquired.
type Bootstrap struct {
	PackageInstall         bool     `toml:"package_install"`
	PackageCommand         []string `toml:"package_command"`
	ReleaseBaseURL         string   `toml:"release_base_url"`
	DownloadTimeoutSeconds int      `toml:"download_timeout_seconds"`
}

// Acquisition contains per-asset download settings.
type Acquisition struct {
	VideoFormat          string `toml:"video_format"`
	AudioFormat          string `toml:"audio_format"`
	SubtitleLanguage     string `toml:"subtitle_language"`
	OEmbedURL            string `toml:"oembed_url"`
	ThumbnailURLTemplate string `toml:"thumbnail_url_template"`
	WatchURLTemplate     string `toml:"watch_url_template"`
	WorkspaceMaxAgeDays  int    `toml:"workspace_max_age_days"`
}

// Subtitles contains placeholder synthesis settings.
type Subtitles struct {
	CadenceSeconds          float64  `toml:"cadence_seconds"`
	FallbackDurationSeconds float64  `toml:"fallback_duration_seconds"`
	PlaceholderTexts        []string `toml:"placeholder_texts"`
}

// Voice contains placeholder voiceover settings.
type Voice struct {
	CacheMaxAgeDays int     `toml:"cache_max_age_days"`
	WordsPerSecond  float64 `toml:"words_per_second"`
}

// Notifications configures ntfy push messages. An empty topic disables them.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for clipper.
//
// Configuration sections by subsystem:
//   - Paths: working, output, binary, log, and cache directories
//   - Tools: downloader/transcoder binaries and subprocess timeout
//   - Bootstrap: package-manager and release-binary fallbacks
//   - Acquisition: container formats, caption language, platform endpoints
//   - Subtitles: placeholder cue cadence and texts
//   - Voice: placeholder voiceover cache policy
//   - Notifications: ntfy topic for completion and failure pushes
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Tools         Tools         `toml:"tools"`
	Bootstrap     Bootstrap     `toml:"bootstrap"`
	Acquisition   Acquisition   `toml:"acquisition"`
	Subtitles     Subtitles     `toml:"subtitles"`
	Voice         Voice         `toml:"voice"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipper/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipper.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories clipper writes into. The output
// directory is created lazily by the export step instead, since it usually
// lives on the user's desktop.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir, c.Paths.VoiceCacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CommandTimeout returns the per-subprocess timeout, or zero when unbounded.
func (c *Config) CommandTimeout() time.Duration {
	if c == nil || c.Tools.CommandTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Tools.CommandTimeoutSeconds) * time.Second
}

// DownloadTimeout returns the HTTP timeout used by bootstrap and oEmbed requests.
func (c *Config) DownloadTimeout() time.Duration {
	if c == nil || c.Bootstrap.DownloadTimeoutSeconds <= 0 {
		return time.Duration(defaultDownloadTimeoutSeconds) * time.Second
	}
	return time.Duration(c.Bootstrap.DownloadTimeoutSeconds) * time.Second
}

// WorkspaceMaxAge is how old a download workspace must be before
// `clipper clean` removes it.
func (c *Config) WorkspaceMaxAge() time.Duration {
	if c == nil || c.Acquisition.WorkspaceMaxAgeDays <= 0 {
		return time.Duration(defaultWorkspaceMaxAgeDays) * 24 * time.Hour
	}
	return time.Duration(c.Acquisition.WorkspaceMaxAgeDays) * 24 * time.Hour
}

// NotificationTimeout bounds each ntfy request.
func (c *Config) NotificationTimeout() time.Duration {
	if c == nil || c.Notifications.RequestTimeoutSeconds <= 0 {
		return time.Duration(defaultNotificationTimeoutSeconds) * time.Second
	}
	return time.Duration(c.Notifications.RequestTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
