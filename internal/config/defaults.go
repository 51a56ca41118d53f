package config

const (
	defaultWorkDir                    = "~/.local/share/clipper/downloads"
	defaultOutputDir                  = "~/Desktop/ytclips"
	defaultBinDir                     = "~/.local/share/clipper/bin"
	defaultLogDir                     = "~/.local/share/clipper/logs"
	defaultVoiceCacheDir              = "~/.cache/clipper/voices"
	defaultAPIBind                    = "127.0.0.1:7490"
	defaultDownloader                 = "yt-dlp"
	defaultFFmpeg                     = "ffmpeg"
	defaultFFprobe                    = "ffprobe"
	defaultVideoCodec                 = "libx264"
	defaultVideoPreset                = "medium"
	defaultReleaseBaseURL             = "https://github.com/yt-dlp/yt-dlp/releases/latest/download"
	defaultDownloadTimeoutSeconds     = 120
	defaultVideoFormat                = "mp4"
	defaultAudioFormat                = "mp3"
	defaultSubtitleLanguage           = "en"
	defaultOEmbedURL                  = "https://www.youtube.com/oembed"
	defaultThumbnailURLTemplate       = "https://img.youtube.com/vi/%s/maxresdefault.jpg"
	defaultWatchURLTemplate           = "https://www.youtube.com/watch?v=%s"
	defaultWorkspaceMaxAgeDays        = 14
	defaultCadenceSeconds             = 5
	defaultFallbackDurationSeconds    = 60
	defaultVoiceCacheMaxAgeDays       = 7
	defaultWordsPerSecond             = 2.5
	defaultNotificationTimeoutSeconds = 10
	defaultLogFormat                  = "console"
	defaultLogLevel                   = "info"
)

var (
	defaultPackageCommand   = []string{"pip", "install", "yt-dlp"}
	defaultPlaceholderTexts = []string{
		"Ambient sound",
		"Sound continues",
		"Music playing",
		"Sound effects",
		"Background noise",
	}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:       defaultWorkDir,
			OutputDir:     defaultOutputDir,
			BinDir:        defaultBinDir,
			LogDir:        defaultLogDir,
			VoiceCacheDir: defaultVoiceCacheDir,
			APIBind:       defaultAPIBind,
		},
		Tools: Tools{
			Downloader:  defaultDownloader,
			FFmpeg:      defaultFFmpeg,
			FFprobe:     defaultFFprobe,
			VideoCodec:  defaultVideoCodec,
			VideoPreset: defaultVideoPreset,
		},
		Bootstrap: Bootstrap{
			PackageInstall:         true,
			PackageCommand:         append([]string(nil), defaultPackageCommand...),
			ReleaseBaseURL:         defaultReleaseBaseURL,
			DownloadTimeoutSeconds: defaultDownloadTimeoutSeconds,
		},
		Acquisition: Acquisition{
			VideoFormat:          defaultVideoFormat,
			AudioFormat:          defaultAudioFormat,
			SubtitleLanguage:     defaultSubtitleLanguage,
			OEmbedURL:            defaultOEmbedURL,
			ThumbnailURLTemplate: defaultThumbnailURLTemplate,
			WatchURLTemplate:     defaultWatchURLTemplate,
			WorkspaceMaxAgeDays:  defaultWorkspaceMaxAgeDays,
		},
		Subtitles: Subtitles{
			CadenceSeconds:          defaultCadenceSeconds,
			FallbackDurationSeconds: defaultFallbackDurationSeconds,
			PlaceholderTexts:        append([]string(nil), defaultPlaceholderTexts...),
		},
		Voice: Voice{
			CacheMaxAgeDays: defaultVoiceCacheMaxAgeDays,
			WordsPerSecond:  defaultWordsPerSecond,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotificationTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
