package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// OEmbed is the public metadata returned by the platform's oEmbed endpoint.
type OEmbed struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

// OEmbedClient fetches metadata and thumbnails without the downloader.
type OEmbedClient struct {
	endpoint          string
	watchTemplate     string
	thumbnailTemplate string
	httpClient        *http.Client
}

// NewOEmbedClient constructs an OEmbedClient. Templates contain one %s for
// the video identifier.
func NewOEmbedClient(endpoint, watchTemplate, thumbnailTemplate string, timeout time.Duration) *OEmbedClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OEmbedClient{
		endpoint:          strings.TrimSpace(endpoint),
		watchTemplate:     watchTemplate,
		thumbnailTemplate: thumbnailTemplate,
		httpClient:        &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves title and author for videoID.
func (c *OEmbedClient) Fetch(ctx context.Context, videoID string) (OEmbed, error) {
	query := url.Values{}
	query.Set("url", fmt.Sprintf(c.watchTemplate, videoID))
	query.Set("format", "json")
	endpoint := c.endpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return OEmbed{}, fmt.Errorf("build oembed request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return OEmbed{}, fmt.Errorf("oembed request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return OEmbed{}, fmt.Errorf("oembed request: unexpected status %s", resp.Status)
	}
	var payload OEmbed
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return OEmbed{}, fmt.Errorf("decode oembed: %w", err)
	}
	return payload, nil
}

// DownloadThumbnail saves the predictable thumbnail for videoID to dest.
func (c *OEmbedClient) DownloadThumbnail(ctx context.Context, videoID, dest string) error {
	thumbURL := fmt.Sprintf(c.thumbnailTemplate, videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbURL, nil)
	if err != nil {
		return fmt.Errorf("build thumbnail request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("thumbnail request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("thumbnail request: unexpected status %s", resp.Status)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create thumbnail: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("write thumbnail: %w", err)
	}
	return out.Close()
}
