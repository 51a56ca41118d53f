package acquisition

import (
	"fmt"
	"path/filepath"
	"strings"

	"clipper/internal/fileutil"
	"clipper/internal/ytdlp"
)

// templatePrefixes are the output-template prefixes of non-video assets.
var templatePrefixes = []string{
	ytdlp.AudioPrefix,
	ytdlp.ManualSubtitlePrefix,
	ytdlp.AutoSubtitlePrefix,
	ytdlp.AllSubtitlePrefix,
	ytdlp.ThumbnailPrefix,
}

// discover picks the file the downloader most likely produced for an asset.
// With a prefix the first candidate carrying it wins; without one the first
// candidate carrying no known prefix wins. Otherwise the first candidate in
// listing order is taken.
func discover(dir, ext, prefix string) (string, bool) {
	candidates, err := fileutil.FindByExtension(dir, ext)
	if err != nil || len(candidates) == 0 {
		return "", false
	}
	for _, candidate := range candidates {
		name := filepath.Base(candidate)
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return candidate, true
		}
		if prefix == "" && !hasTemplatePrefix(name) {
			return candidate, true
		}
	}
	return candidates[0], true
}

func hasTemplatePrefix(name string) bool {
	for _, prefix := range templatePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// prefixed lists files with ext whose names start with prefix.
func prefixed(dir, ext, prefix string) []string {
	candidates, err := fileutil.FindByExtension(dir, ext)
	if err != nil {
		return nil
	}
	var out []string
	for _, candidate := range candidates {
		if strings.HasPrefix(filepath.Base(candidate), prefix) {
			out = append(out, candidate)
		}
	}
	return out
}

// adopt renames a discovered file to dir/<base>.<ext> unless it already has
// that name.
func adopt(found, dir, base, ext string) (string, error) {
	target := filepath.Join(dir, base+"."+strings.TrimPrefix(ext, "."))
	if err := fileutil.MoveFile(found, target); err != nil {
		return "", fmt.Errorf("adopt %s: %w", filepath.Base(found), err)
	}
	return target, nil
}
