package acquisition

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"clipper/internal/logging"
	"clipper/internal/services"
	"clipper/internal/textutil"
	"clipper/internal/ytdlp"
)

const (
	fallbackTitle   = "Unknown Title"
	fallbackChannel = "Unknown Channel"
)

// metadataOnly builds a result without the downloader: the identifier comes
// from the URL, title and author from oEmbed, and the thumbnail from its
// predictable URL. Only an underivable identifier is fatal.
func (p *Pipeline) metadataOnly(ctx context.Context, url, workspace string, opts Options, cause error) (Result, error) {
	logger := logging.WithContext(ctx, p.logger)
	videoID, ok := ytdlp.VideoIDFromURL(url)
	if !ok {
		return Result{}, services.Wrap(services.ErrValidation, "acquisition", "metadata fallback",
			fmt.Sprintf("Downloader unavailable and no video identifier in %q", url), cause)
	}

	result := Result{
		VideoID:      videoID,
		Title:        fallbackTitle,
		Channel:      fallbackChannel,
		UploadDate:   p.now().Format("2006-01-02"),
		MetadataOnly: true,
	}
	if meta, err := p.oembed.Fetch(ctx, videoID); err != nil {
		logger.Debug("oembed lookup failed", logging.Error(err))
	} else {
		if title := strings.TrimSpace(meta.Title); title != "" {
			result.Title = title
		}
		if author := strings.TrimSpace(meta.AuthorName); author != "" {
			result.Channel = author
		}
	}

	if opts.DownloadVideo {
		result.Assets = append(result.Assets, Asset{Kind: AssetVideo})
	}
	if opts.DownloadAudio {
		result.Assets = append(result.Assets, Asset{Kind: AssetAudio})
	}
	if opts.DownloadSubtitles {
		result.Assets = append(result.Assets, Asset{Kind: AssetSubtitle})
	}
	if opts.any() {
		base := textutil.SanitizeTitle(result.Title)
		if result.Title == fallbackTitle || strings.TrimSpace(base) == "" {
			base = "thumbnail"
		}
		dest := filepath.Join(workspace, base+".jpg")
		thumb := Asset{Kind: AssetThumbnail}
		if err := p.oembed.DownloadThumbnail(ctx, videoID, dest); err != nil {
			logger.Debug("thumbnail download failed", logging.Error(err))
		} else {
			thumb = Asset{Kind: AssetThumbnail, Path: dest, Present: true}
		}
		result.Assets = append(result.Assets, thumb)
	}

	result.Warning = fmt.Sprintf("Downloader unavailable; returned metadata only (%s)", summarize(cause))
	return result, nil
}

// summarize keeps the first line of an error for user-facing warnings.
func summarize(err error) string {
	if err == nil {
		return "unknown cause"
	}
	msg := strings.TrimSpace(err.Error())
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	return msg
}
