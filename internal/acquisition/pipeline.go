package acquisition

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"clipper/internal/config"
	"clipper/internal/history"
	"clipper/internal/logging"
	"clipper/internal/notifications"
	"clipper/internal/services"
	"clipper/internal/subtitles"
	"clipper/internal/textutil"
	"clipper/internal/tools"
	"clipper/internal/ytdlp"
)

// Recorder persists acquisition results. *history.Store satisfies it.
type Recorder interface {
	RecordAcquisition(ctx context.Context, rec history.Acquisition) (int64, error)
}

// Pipeline orchestrates acquisitions.
type Pipeline struct {
	cfg       *config.Config
	gateway   *tools.Gateway
	bootstrap *ytdlp.Bootstrapper
	oembed    *ytdlp.OEmbedClient
	subtitles *subtitles.Service
	recorder  Recorder
	notifier  notifications.Service
	now       func() time.Time
	logger    *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithRecorder records every result in history.
func WithRecorder(recorder Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = recorder
	}
}

// WithNotifier overrides the notification service built from config.
func WithNotifier(notifier notifications.Service) Option {
	return func(p *Pipeline) {
		if notifier != nil {
			p.notifier = notifier
		}
	}
}

// WithOEmbedClient overrides the metadata-only fallback client.
func WithOEmbedClient(client *ytdlp.OEmbedClient) Option {
	return func(p *Pipeline) {
		if client != nil {
			p.oembed = client
		}
	}
}

// WithBootstrapper overrides how the downloader is made available.
func WithBootstrapper(b *ytdlp.Bootstrapper) Option {
	return func(p *Pipeline) {
		if b != nil {
			p.bootstrap = b
		}
	}
}

// WithClock overrides the time source used for workspace names.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPipeline constructs a Pipeline invoking tools through gateway.
func NewPipeline(cfg *config.Config, gateway *tools.Gateway, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		gateway:  gateway,
		notifier: notifications.NewService(cfg),
		now:      time.Now,
		logger:   logging.NewComponentLogger(logger, "acquisition"),
	}
	p.bootstrap = ytdlp.NewBootstrapper(ytdlp.BootstrapConfig{
		Binary:         cfg.Tools.Downloader,
		BinDir:         cfg.Paths.BinDir,
		PackageInstall: cfg.Bootstrap.PackageInstall,
		PackageCommand: cfg.Bootstrap.PackageCommand,
		ReleaseBaseURL: cfg.Bootstrap.ReleaseBaseURL,
	}, gateway, logger, ytdlp.WithHTTPClient(&http.Client{Timeout: cfg.DownloadTimeout()}))
	p.oembed = ytdlp.NewOEmbedClient(
		cfg.Acquisition.OEmbedURL,
		cfg.Acquisition.WatchURLTemplate,
		cfg.Acquisition.ThumbnailURLTemplate,
		cfg.DownloadTimeout(),
	)
	p.subtitles = subtitles.NewService(cfg, gateway, logger)
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Downloader makes the downloader invocable and returns a client for it.
func (p *Pipeline) Downloader(ctx context.Context) (*ytdlp.Client, error) {
	binary, err := p.bootstrap.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	return ytdlp.NewClient(binary, p.gateway, ytdlp.Options{
		VideoFormat:      p.cfg.Acquisition.VideoFormat,
		AudioFormat:      p.cfg.Acquisition.AudioFormat,
		SubtitleLanguage: p.cfg.Acquisition.SubtitleLanguage,
		WatchURLTemplate: p.cfg.Acquisition.WatchURLTemplate,
	}, p.logger), nil
}

// Acquire downloads the requested assets for url into a new working
// directory. Only workspace creation and an underivable video identifier on
// the metadata-only path are fatal; missing assets are reported through
// Result.Warning.
func (p *Pipeline) Acquire(ctx context.Context, url string, opts Options) (Result, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Result{}, services.Wrap(services.ErrValidation, "acquisition", "acquire", "URL is required", nil)
	}
	ctx, requestID := services.EnsureRequestID(ctx)
	ctx = services.WithSourceURL(services.WithStage(ctx, "acquisition"), url)
	logger := logging.WithContext(ctx, p.logger)

	workspace, err := createWorkspace(p.cfg.Paths.WorkDir, p.now())
	if err != nil {
		return Result{}, err
	}
	logger.Info("acquisition started",
		logging.String(logging.FieldEventType, "acquisition_started"),
		logging.String("working_directory", workspace),
		logging.Bool("video", opts.DownloadVideo),
		logging.Bool("audio", opts.DownloadAudio),
		logging.Bool("subtitles", opts.DownloadSubtitles),
	)

	var result Result
	client, err := p.Downloader(ctx)
	if err == nil {
		result, err = p.acquireWithDownloader(ctx, client, url, workspace, opts)
	}
	if err != nil {
		logging.WarnWithContext(logger, "downloader path failed; using metadata-only fallback", "acquisition_degraded",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install yt-dlp or check bootstrap settings, then run clipper doctor"),
			logging.String(logging.FieldImpact, "no video or audio is downloaded"),
		)
		result, err = p.metadataOnly(ctx, url, workspace, opts, err)
		if err != nil {
			return Result{}, err
		}
	}
	result.RequestID = requestID
	result.SourceURL = url
	result.WorkingDirectory = workspace

	if missing := result.Missing(); len(missing) > 0 && !result.MetadataOnly {
		result.Warning = missingWarning(missing)
		logging.WarnWithContext(logger, "acquisition incomplete", "acquisition_partial",
			logging.String("missing", joinKinds(missing)),
			logging.String(logging.FieldErrorHint, `set logging.level = "debug" to see downloader output`),
			logging.String(logging.FieldImpact, "missing assets are absent from the working directory"),
		)
	}
	p.record(ctx, result)
	p.notify(ctx, result)
	logger.Info("acquisition finished",
		logging.String(logging.FieldEventType, "acquisition_finished"),
		logging.String("title", result.Title),
		logging.Int("assets", len(result.Assets)-len(result.Missing())),
		logging.Bool("metadata_only", result.MetadataOnly),
	)
	return result, nil
}

func (p *Pipeline) acquireWithDownloader(ctx context.Context, client *ytdlp.Client, url, workspace string, opts Options) (Result, error) {
	meta, err := client.Metadata(ctx, url)
	if err != nil {
		return Result{}, err
	}
	base := textutil.SanitizeTitle(meta.Title)
	if strings.TrimSpace(base) == "" {
		base = meta.ID
	}
	result := Result{
		VideoID:         meta.ID,
		Title:           meta.Title,
		Channel:         meta.Channel,
		DurationSeconds: meta.DurationSeconds,
		UploadDate:      meta.UploadDate,
		Description:     meta.Description,
	}
	if !opts.any() {
		return result, nil
	}

	logger := logging.WithContext(ctx, p.logger)
	videoExt := p.cfg.Acquisition.VideoFormat
	audioExt := p.cfg.Acquisition.AudioFormat

	if opts.DownloadVideo {
		res := client.DownloadVideo(ctx, url, workspace)
		result.Assets = append(result.Assets, p.collect(logger, AssetVideo, res, workspace, videoExt, "", base))
	}
	if opts.DownloadAudio {
		res := client.DownloadAudio(ctx, url, workspace)
		result.Assets = append(result.Assets, p.collect(logger, AssetAudio, res, workspace, audioExt, ytdlp.AudioPrefix, base))
	}
	if opts.DownloadSubtitles {
		result.Assets = append(result.Assets, p.collectSubtitles(ctx, client, url, workspace, base, result.Assets))
	}
	res := client.DownloadThumbnail(ctx, url, workspace)
	result.Assets = append(result.Assets, p.collect(logger, AssetThumbnail, res, workspace, "jpg", ytdlp.ThumbnailPrefix, base))
	return result, nil
}

// collect turns one download attempt into an Asset.
func (p *Pipeline) collect(logger *slog.Logger, kind AssetKind, res tools.Result, dir, ext, prefix, base string) Asset {
	if !res.ExitSucceeded {
		logger.Debug("asset download failed",
			logging.String("asset", string(kind)),
			logging.Bool("timed_out", res.TimedOut),
			logging.String("stderr", lastLine(res.Stderr)),
		)
		return Asset{Kind: kind}
	}
	found, ok := discover(dir, ext, prefix)
	if !ok {
		logger.Debug("asset download produced no file",
			logging.String("asset", string(kind)),
			logging.String("extension", ext),
		)
		return Asset{Kind: kind}
	}
	path, err := adopt(found, dir, base, ext)
	if err != nil {
		logger.Debug("asset rename failed", logging.String("asset", string(kind)), logging.Error(err))
		return Asset{Kind: kind, Path: found, Present: true}
	}
	return Asset{Kind: kind, Path: path, Present: true}
}

// collectSubtitles runs the manual and auto requests, then the broad request,
// and finally synthesizes placeholder cues when a video or audio asset
// exists to measure.
func (p *Pipeline) collectSubtitles(ctx context.Context, client *ytdlp.Client, url, workspace, base string, media []Asset) Asset {
	logger := logging.WithContext(ctx, p.logger)

	client.DownloadSubtitles(ctx, url, workspace, ytdlp.SubtitlesManual)
	client.DownloadSubtitles(ctx, url, workspace, ytdlp.SubtitlesAuto)
	candidates := append(prefixed(workspace, "vtt", ytdlp.ManualSubtitlePrefix), prefixed(workspace, "vtt", ytdlp.AutoSubtitlePrefix)...)
	if len(candidates) == 0 {
		client.DownloadSubtitles(ctx, url, workspace, ytdlp.SubtitlesAll)
		candidates = prefixed(workspace, "vtt", ytdlp.AllSubtitlePrefix)
	}
	if len(candidates) > 0 {
		chosen, err := subtitles.SelectCandidate(candidates)
		if err != nil {
			logger.Debug("stale subtitle candidates not removed", logging.Error(err))
		}
		path, err := adopt(chosen, workspace, base, "vtt")
		if err != nil {
			logger.Debug("subtitle rename failed", logging.Error(err))
			path = chosen
		}
		return Asset{Kind: AssetSubtitle, Path: path, Present: true}
	}

	for _, asset := range media {
		if !asset.Present || (asset.Kind != AssetVideo && asset.Kind != AssetAudio) {
			continue
		}
		cues := p.subtitles.Synthesize(ctx, asset.Path)
		canonical := subtitles.CanonicalPath(asset.Path)
		logging.WarnWithContext(logger, "no subtitle track available; synthesized placeholder cues", "subtitles_placeholder",
			logging.Int("cues", len(cues)),
			logging.String(logging.FieldErrorHint, "the video may have no captions in the configured language"),
			logging.String(logging.FieldImpact, "subtitle file holds ambient placeholders"),
		)
		return Asset{Kind: AssetSubtitle, Path: canonical, Present: len(cues) > 0}
	}
	return Asset{Kind: AssetSubtitle}
}

func (p *Pipeline) record(ctx context.Context, result Result) {
	if p.recorder == nil {
		return
	}
	rec := history.Acquisition{
		RequestID:        result.RequestID,
		URL:              result.SourceURL,
		VideoID:          result.VideoID,
		Title:            result.Title,
		WorkingDirectory: result.WorkingDirectory,
		Warning:          result.Warning,
	}
	for _, asset := range result.Assets {
		switch asset.Kind {
		case AssetVideo:
			rec.HasVideo = asset.Present
		case AssetAudio:
			rec.HasAudio = asset.Present
		case AssetSubtitle:
			rec.HasSubtitles = asset.Present
		case AssetThumbnail:
			rec.HasThumbnail = asset.Present
		}
	}
	if _, err := p.recorder.RecordAcquisition(ctx, rec); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "acquisition not recorded in history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that history.db in log_dir is writable"),
			logging.String(logging.FieldImpact, "clipper history will not list this acquisition"),
		)
	}
}

// notify publishes the outcome. Delivery failures are logged and otherwise
// ignored.
func (p *Pipeline) notify(ctx context.Context, result Result) {
	event := notifications.EventAcquisitionCompleted
	if result.Warning != "" {
		event = notifications.EventAcquisitionDegraded
	}
	var present []AssetKind
	for _, asset := range result.Assets {
		if asset.Present {
			present = append(present, asset.Kind)
		}
	}
	err := p.notifier.Publish(ctx, event, notifications.Payload{
		"title":   result.Title,
		"assets":  joinKinds(present),
		"warning": result.Warning,
	})
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "acquisition notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic and network access"),
			logging.String(logging.FieldImpact, "no push was sent for this acquisition"),
		)
	}
}

func missingWarning(missing []AssetKind) string {
	return fmt.Sprintf("Some assets could not be downloaded: %s", joinKinds(missing))
}

func joinKinds(kinds []AssetKind) string {
	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = string(kind)
	}
	return strings.Join(names, ", ")
}

func lastLine(output string) string {
	output = strings.TrimSpace(output)
	if idx := strings.LastIndexByte(output, '\n'); idx >= 0 {
		return output[idx+1:]
	}
	return output
}
