package api

import (
	"clipper/internal/history"
	"clipper/internal/preflight"
	"clipper/internal/vtt"
)

// AcquireRequest is the body of POST /api/acquire. Omitted asset flags
// default to true.
type AcquireRequest struct {
	URL       string `json:"url"`
	Video     *bool  `json:"video,omitempty"`
	Audio     *bool  `json:"audio,omitempty"`
	Subtitles *bool  `json:"subtitles,omitempty"`
}

// SubtitlesRequest is the body of POST /api/subtitles/resolve. An empty
// media path yields the default cues; platform captions are tried unless
// try_platform_auto is false.
type SubtitlesRequest struct {
	MediaPath       string `json:"media_path"`
	TryPlatformAuto *bool  `json:"try_platform_auto,omitempty"`
}

// SubtitlesResponse reports resolved cues and where they came from.
type SubtitlesResponse struct {
	Origin string    `json:"origin"`
	Path   string    `json:"path,omitempty"`
	Cues   []vtt.Cue `json:"cues"`
}

// VerticalRequest is the body of POST /api/transform/vertical.
type VerticalRequest struct {
	VideoPath string `json:"video_path"`
}

// ExtractAudioRequest is the body of POST /api/transform/extract-audio.
type ExtractAudioRequest struct {
	VideoPath  string `json:"video_path"`
	OutputPath string `json:"output_path,omitempty"`
}

// VoiceRequest is the body of POST /api/voice.
type VoiceRequest struct {
	Text    string  `json:"text"`
	Voice   string  `json:"voice,omitempty"`
	Speed   float64 `json:"speed,omitempty"`
	Pitch   float64 `json:"pitch,omitempty"`
	Emotion string  `json:"emotion,omitempty"`
}

// HistoryResponse lists recent acquisitions and exports.
type HistoryResponse struct {
	Acquisitions []history.Acquisition `json:"acquisitions"`
	Exports      []history.Export      `json:"exports"`
}

// HealthResponse summarizes preflight checks.
type HealthResponse struct {
	Status    string             `json:"status"`
	Timestamp string             `json:"timestamp"`
	Checks    []preflight.Result `json:"checks,omitempty"`
}

// ErrorResponse is returned for failures without a richer result body.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
