package ytdlp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	unknownTitle   = "Unknown Title"
	unknownChannel = "Unknown"
)

// Metadata is the subset of the info dump clipper uses.
type Metadata struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	DurationSeconds float64 `json:"duration"`
	Channel         string  `json:"channel"`
	Uploader        string  `json:"uploader"`
	UploadDate      string  `json:"upload_date"`
}

// DecodeMetadata parses an info dump and fills defaults. The upload date is
// converted from YYYYMMDD to YYYY-MM-DD; a missing or malformed value becomes
// the date of now.
func DecodeMetadata(payload []byte, now time.Time) (Metadata, error) {
	var meta Metadata
	if err := json.Unmarshal(firstJSONLine(payload), &meta); err != nil {
		return Metadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	meta.ID = strings.TrimSpace(meta.ID)
	if meta.ID == "" {
		meta.ID = "unknown"
	}
	if strings.TrimSpace(meta.Title) == "" {
		meta.Title = unknownTitle
	}
	if strings.TrimSpace(meta.Channel) == "" {
		meta.Channel = strings.TrimSpace(meta.Uploader)
	}
	if meta.Channel == "" {
		meta.Channel = unknownChannel
	}
	if meta.DurationSeconds < 0 {
		meta.DurationSeconds = 0
	}
	meta.UploadDate = isoDate(meta.UploadDate, now)
	return meta, nil
}

func isoDate(raw string, now time.Time) string {
	raw = strings.TrimSpace(raw)
	if parsed, err := time.Parse("20060102", raw); err == nil {
		return parsed.Format(time.DateOnly)
	}
	return now.Format(time.DateOnly)
}

// firstJSONLine tolerates trailing output (e.g. warnings) after the dump.
func firstJSONLine(payload []byte) []byte {
	text := strings.TrimSpace(string(payload))
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return []byte(text)
}
