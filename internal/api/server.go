package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"clipper/internal/acquisition"
	"clipper/internal/history"
	"clipper/internal/logging"
	"clipper/internal/preflight"
	"clipper/internal/subtitles"
	"clipper/internal/transform"
	"clipper/internal/voice"
)

// Acquirer runs the media acquisition pipeline.
type Acquirer interface {
	Acquire(ctx context.Context, url string, opts acquisition.Options) (acquisition.Result, error)
}

// SubtitleResolver resolves cues for a media file.
type SubtitleResolver interface {
	Resolve(ctx context.Context, mediaPath string, opts subtitles.Options) (subtitles.Document, error)
}

// Transformer runs video transforms.
type Transformer interface {
	ToVertical(ctx context.Context, videoPath string) (transform.Result, error)
	BurnSubtitles(ctx context.Context, req transform.BurnRequest) (transform.Result, error)
	ExtractAudio(ctx context.Context, videoPath, destPath string) (transform.Result, error)
}

// VoiceGenerator produces placeholder voiceover clips.
type VoiceGenerator interface {
	Generate(ctx context.Context, text string, opts voice.Options) (voice.Clip, error)
}

// HistoryReader lists recorded operations.
type HistoryReader interface {
	RecentAcquisitions(ctx context.Context, limit int) ([]history.Acquisition, error)
	RecentExports(ctx context.Context, limit int) ([]history.Export, error)
}

// HealthChecker runs readiness checks.
type HealthChecker func(ctx context.Context) []preflight.Result

// Dependencies wires the services behind the router. Nil members disable the
// matching endpoints, which then answer 503.
type Dependencies struct {
	Acquirer    Acquirer
	Subtitles   SubtitleResolver
	Transformer Transformer
	Voice       VoiceGenerator
	History     HistoryReader
	Health      HealthChecker
}

// Server is the HTTP front end.
type Server struct {
	deps   Dependencies
	logger *slog.Logger
	router chi.Router
	now    func() time.Time
}

// NewServer builds the router for deps.
func NewServer(deps Dependencies, logger *slog.Logger) *Server {
	s := &Server{
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "api-server"),
		router: chi.NewRouter(),
		now:    time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.Use(middleware.RealIP)
	s.router.Use(requestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.accessLog)
	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found", "")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/history", s.handleHistory)
		r.Post("/acquire", s.handleAcquire)
		r.Post("/subtitles/resolve", s.handleResolveSubtitles)
		r.Post("/voice", s.handleVoice)
		r.Route("/transform", func(r chi.Router) {
			r.Post("/vertical", s.handleVertical)
			r.Post("/burn", s.handleBurn)
			r.Post("/extract-audio", s.handleExtractAudio)
		})
	})
}

// ListenAndServe serves on bind until ctx is cancelled, then shuts down
// gracefully. ready, when non-nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, bind string, ready func(addr string)) error {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()
	s.logger.Info("api server listening",
		logging.String(logging.FieldEventType, "api_listening"),
		logging.String("address", listener.Addr().String()),
	)
	if ready != nil {
		ready(listener.Addr().String())
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	s.logger.Info("api server stopped", logging.String(logging.FieldEventType, "api_stopped"))
	return nil
}
