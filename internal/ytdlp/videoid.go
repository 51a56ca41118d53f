package ytdlp

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

var filenameIDRe = regexp.MustCompile(`[a-zA-Z0-9_-]{11}`)

// VideoIDFromURL derives the platform identifier from a watch URL: the path
// segment after youtu.be/, otherwise the v query parameter.
func VideoIDFromURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if strings.Contains(raw, "youtu.be") {
		segment := raw[strings.LastIndex(raw, "/")+1:]
		if idx := strings.IndexAny(segment, "?#"); idx >= 0 {
			segment = segment[:idx]
		}
		segment = strings.TrimSpace(segment)
		return segment, segment != ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	id := strings.TrimSpace(parsed.Query().Get("v"))
	return id, id != ""
}

// VideoIDFromFilename finds the first 11-character identifier-shaped token in
// the base name of path.
func VideoIDFromFilename(path string) (string, bool) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	match := filenameIDRe.FindString(base)
	return match, match != ""
}
