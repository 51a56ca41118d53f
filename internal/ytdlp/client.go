package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"clipper/internal/logging"
	"clipper/internal/services"
	"clipper/internal/tools"
)

var progressRe = regexp.MustCompile(`^\[download\]\s+([0-9.]+)%`)

// Options configures a Client.
type Options struct {
	VideoFormat      string
	AudioFormat      string
	SubtitleLanguage string
	// WatchURLTemplate contains one %s for the video identifier.
	WatchURLTemplate string
}

// Client issues downloader requests through the tools gateway.
type Client struct {
	binary  string
	gateway *tools.Gateway
	opts    Options
	logger  *slog.Logger
	now     func() time.Time
}

// NewClient constructs a Client invoking binary.
func NewClient(binary string, gateway *tools.Gateway, opts Options, logger *slog.Logger) *Client {
	if strings.TrimSpace(opts.WatchURLTemplate) == "" {
		opts.WatchURLTemplate = "https://www.youtube.com/watch?v=%s"
	}
	return &Client{
		binary:  binary,
		gateway: gateway,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "ytdlp"),
		now:     time.Now,
	}
}

// Binary returns the resolved downloader path.
func (c *Client) Binary() string {
	return c.binary
}

// WatchURL reconstructs the platform URL for a video identifier.
func (c *Client) WatchURL(videoID string) string {
	return fmt.Sprintf(c.opts.WatchURLTemplate, videoID)
}

// Metadata fetches and decodes the info dump for url.
func (c *Client) Metadata(ctx context.Context, url string) (Metadata, error) {
	result := c.gateway.Run(ctx, c.binary, MetadataArgs(url)...)
	if !result.ExitSucceeded {
		marker := services.ErrExternalTool
		if result.TimedOut {
			marker = services.ErrTimeout
		}
		return Metadata{}, services.Wrap(marker, "ytdlp", "metadata", "Metadata request failed", errors.New(tail(result.Stderr)))
	}
	meta, err := DecodeMetadata([]byte(result.Stdout), c.now())
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrExternalTool, "ytdlp", "metadata", "Metadata output unreadable", err)
	}
	return meta, nil
}

// DownloadVideo fetches the combined video into dir.
func (c *Client) DownloadVideo(ctx context.Context, url, dir string) tools.Result {
	return c.download(ctx, "video", VideoArgs(url, dir, c.opts.VideoFormat))
}

// DownloadAudio extracts the audio track into dir.
func (c *Client) DownloadAudio(ctx context.Context, url, dir string) tools.Result {
	return c.download(ctx, "audio", AudioArgs(url, dir, c.opts.AudioFormat))
}

// DownloadSubtitles requests caption tracks of the given mode into dir.
func (c *Client) DownloadSubtitles(ctx context.Context, url, dir string, mode SubtitleMode) tools.Result {
	return c.download(ctx, "subtitles_"+string(mode), SubtitleArgs(url, dir, c.opts.SubtitleLanguage, mode))
}

// DownloadThumbnail writes the JPEG thumbnail into dir.
func (c *Client) DownloadThumbnail(ctx context.Context, url, dir string) tools.Result {
	return c.download(ctx, "thumbnail", ThumbnailArgs(url, dir))
}

// FetchAutoCaptions requests auto-generated captions for videoID. The file is
// written to outputBase + ".<lang>.vtt".
func (c *Client) FetchAutoCaptions(ctx context.Context, videoID, outputBase string) tools.Result {
	return c.download(ctx, "auto_captions", AutoCaptionArgs(c.WatchURL(videoID), outputBase, c.opts.SubtitleLanguage))
}

// CaptionLanguage returns the configured caption language.
func (c *Client) CaptionLanguage() string {
	return normalizeExt(c.opts.SubtitleLanguage, "en")
}

func (c *Client) download(ctx context.Context, phase string, args []string) tools.Result {
	logger := logging.WithContext(ctx, c.logger)
	sampler := logging.NewProgressSampler(10)
	result := c.gateway.Invoke(ctx, tools.Invocation{
		Name: c.binary,
		Args: args,
		OnLine: func(stream tools.Stream, line string) {
			if stream != tools.StreamStdout {
				return
			}
			percent, ok := parseProgress(line)
			if !ok || !sampler.ShouldLog(percent, phase) {
				return
			}
			logger.Debug("download progress",
				logging.String("phase", phase),
				logging.Float64("percent", percent),
				logging.Int("part", sampler.Parts()),
			)
		},
	})
	if !result.ExitSucceeded {
		logger.Debug("download request failed",
			logging.String("phase", phase),
			logging.Bool("timed_out", result.TimedOut),
			logging.String("stderr", tail(result.Stderr)),
		)
	}
	return result
}

func parseProgress(line string) (float64, bool) {
	match := progressRe.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// tail keeps the last few lines of tool output for error messages.
func tail(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}
