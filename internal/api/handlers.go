package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clipper/internal/acquisition"
	"clipper/internal/logging"
	"clipper/internal/preflight"
	"clipper/internal/services"
	"clipper/internal/subtitles"
	"clipper/internal/transform"
	"clipper/internal/voice"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Timestamp: s.now().UTC().Format(time.RFC3339)}
	status := http.StatusOK
	if s.deps.Health != nil {
		resp.Checks = s.deps.Health(r.Context())
		if preflight.Failed(resp.Checks) {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		s.unavailable(w, "history")
		return
	}
	limit := 20
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer", services.Kind(services.ErrValidation))
			return
		}
		limit = parsed
	}
	acquisitions, err := s.deps.History.RecentAcquisitions(r.Context(), limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	exports, err := s.deps.History.RecentExports(r.Context(), limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, HistoryResponse{Acquisitions: acquisitions, Exports: exports})
}

func (s *Server) handleAcquire(w http.ResponseWriter, r *http.Request) {
	if s.deps.Acquirer == nil {
		s.unavailable(w, "acquisition")
		return
	}
	var req AcquireRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts := acquisition.Options{
		DownloadVideo:     flag(req.Video),
		DownloadAudio:     flag(req.Audio),
		DownloadSubtitles: flag(req.Subtitles),
	}
	result, err := s.deps.Acquirer.Acquire(r.Context(), req.URL, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleResolveSubtitles(w http.ResponseWriter, r *http.Request) {
	var req SubtitlesRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.MediaPath) == "" {
		s.writeJSON(w, http.StatusOK, SubtitlesResponse{
			Origin: string(subtitles.OriginDefault),
			Cues:   subtitles.DefaultCues(),
		})
		return
	}
	if s.deps.Subtitles == nil {
		s.unavailable(w, "subtitles")
		return
	}
	doc, err := s.deps.Subtitles.Resolve(r.Context(), req.MediaPath, subtitles.Options{TryPlatformAuto: flag(req.TryPlatformAuto)})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SubtitlesResponse{Origin: string(doc.Origin), Path: doc.Path, Cues: doc.Cues})
}

func (s *Server) handleVertical(w http.ResponseWriter, r *http.Request) {
	if s.deps.Transformer == nil {
		s.unavailable(w, "transform")
		return
	}
	var req VerticalRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.deps.Transformer.ToVertical(r.Context(), req.VideoPath)
	s.writeTransform(w, result, err)
}

func (s *Server) handleBurn(w http.ResponseWriter, r *http.Request) {
	if s.deps.Transformer == nil {
		s.unavailable(w, "transform")
		return
	}
	var req transform.BurnRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.deps.Transformer.BurnSubtitles(r.Context(), req)
	s.writeTransform(w, result, err)
}

func (s *Server) handleExtractAudio(w http.ResponseWriter, r *http.Request) {
	if s.deps.Transformer == nil {
		s.unavailable(w, "transform")
		return
	}
	var req ExtractAudioRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.deps.Transformer.ExtractAudio(r.Context(), req.VideoPath, req.OutputPath)
	s.writeTransform(w, result, err)
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	if s.deps.Voice == nil {
		s.unavailable(w, "voice")
		return
	}
	var req VoiceRequest
	if !s.decode(w, r, &req) {
		return
	}
	clip, err := s.deps.Voice.Generate(r.Context(), req.Text, voice.Options{
		Voice:   req.Voice,
		Speed:   req.Speed,
		Pitch:   req.Pitch,
		Emotion: req.Emotion,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, clip)
}

// decode reads a JSON body into dst, answering 400 on malformed input.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), services.Kind(services.ErrValidation))
		return false
	}
	return true
}

func (s *Server) writeTransform(w http.ResponseWriter, result transform.Result, err error) {
	if err != nil {
		s.writeJSON(w, statusFor(err), result)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.writeError(w, statusFor(err), err.Error(), services.Kind(err))
}

func (s *Server) unavailable(w http.ResponseWriter, feature string) {
	s.writeError(w, http.StatusServiceUnavailable, feature+" is not configured", services.Kind(services.ErrToolUnavailable))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message, kind string) {
	s.writeJSON(w, status, ErrorResponse{Error: message, Kind: kind})
}

// statusFor maps a services marker onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrToolUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func flag(value *bool) bool {
	return value == nil || *value
}
