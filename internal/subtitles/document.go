package subtitles

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"clipper/internal/vtt"
	"clipper/internal/ytdlp"
)

// Origin names the strategy that produced a Document.
type Origin string

const (
	OriginReused      Origin = "reused"
	OriginConverted   Origin = "converted"
	OriginEmbedded    Origin = "embedded-extracted"
	OriginPlatform    Origin = "platform-auto"
	OriginPlaceholder Origin = "synthesized-placeholder"
	// OriginDefault marks the fixed cues returned for requests without media.
	OriginDefault Origin = "default"
)

// Document is a resolved cue sequence and its provenance.
type Document struct {
	Cues   []vtt.Cue `json:"cues"`
	Origin Origin    `json:"origin"`
	// Path is the canonical file the cues were written to, when any.
	Path string `json:"path,omitempty"`
}

// CanonicalPath returns the sibling .vtt path for a media file.
func CanonicalPath(mediaPath string) string {
	return strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath)) + ".vtt"
}

// DefaultCues returns the fixed cues used when a request names no media.
func DefaultCues() []vtt.Cue {
	return []vtt.Cue{
		{ID: "0", Start: 0, End: 5, Text: "This is a placeholder subtitle"},
		{ID: "1", Start: 5, End: 10, Text: "Generated by clipper"},
	}
}

// SelectCandidate picks one subtitle file out of the candidates a downloader
// request produced and deletes the rest. Manual tracks are preferred;
// otherwise the first candidate wins. Auto-generated tracks are recognized by
// the downloader's output prefix only, since the rest of the name is the
// video title. An empty list selects nothing. The
// returned error joins any removal failures; the selection stands regardless.
func SelectCandidate(candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", nil
	}
	chosen := candidates[0]
	for _, candidate := range candidates {
		if !strings.HasPrefix(filepath.Base(candidate), ytdlp.AutoSubtitlePrefix) {
			chosen = candidate
			break
		}
	}
	var errs []error
	for _, candidate := range candidates {
		if candidate == chosen {
			continue
		}
		if err := os.Remove(candidate); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return chosen, errors.Join(errs...)
}
