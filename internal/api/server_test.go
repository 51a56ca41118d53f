package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"clipper/internal/acquisition"
	"clipper/internal/api"
	"clipper/internal/history"
	"clipper/internal/logging"
	"clipper/internal/preflight"
	"clipper/internal/services"
	"clipper/internal/subtitles"
	"clipper/internal/testsupport"
	"clipper/internal/transform"
	"clipper/internal/vtt"
)

type fakeAcquirer struct {
	gotURL  string
	gotOpts acquisition.Options
	gotID   string
	err     error
}

func (f *fakeAcquirer) Acquire(ctx context.Context, url string, opts acquisition.Options) (acquisition.Result, error) {
	f.gotURL = url
	f.gotOpts = opts
	f.gotID, _ = services.RequestIDFromContext(ctx)
	if f.err != nil {
		return acquisition.Result{}, f.err
	}
	return acquisition.Result{RequestID: f.gotID, VideoID: "dQw4w9WgXcQ", Title: "Demo"}, nil
}

type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context, mediaPath string, _ subtitles.Options) (subtitles.Document, error) {
	if strings.Contains(mediaPath, "missing") {
		return subtitles.Document{}, services.Wrap(services.ErrNotFound, "subtitles", "resolve", "Media file does not exist", nil)
	}
	return subtitles.Document{
		Origin: subtitles.OriginReused,
		Path:   subtitles.CanonicalPath(mediaPath),
		Cues:   []vtt.Cue{{ID: "1", Start: 0, End: 2, Text: "hi"}},
	}, nil
}

func do(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestAcquireDefaultsAndRequestID(t *testing.T) {
	acq := &fakeAcquirer{}
	handler := api.NewServer(api.Dependencies{Acquirer: acq}, logging.NewNop()).Handler()

	rec := do(t, handler, http.MethodPost, "/api/acquire", `{"url":"https://youtu.be/dQw4w9WgXcQ","audio":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if acq.gotURL != "https://youtu.be/dQw4w9WgXcQ" {
		t.Fatalf("unexpected url %q", acq.gotURL)
	}
	if !acq.gotOpts.DownloadVideo || acq.gotOpts.DownloadAudio || !acq.gotOpts.DownloadSubtitles {
		t.Fatalf("unexpected options %+v", acq.gotOpts)
	}
	header := rec.Header().Get(api.RequestIDHeader)
	if header == "" || header != acq.gotID {
		t.Fatalf("request id header %q does not match context %q", header, acq.gotID)
	}
	result := decode[acquisition.Result](t, rec)
	if result.Title != "Demo" || result.RequestID != header {
		t.Fatalf("unexpected body %+v", result)
	}
}

func TestAcquireHonoursIncomingRequestID(t *testing.T) {
	acq := &fakeAcquirer{}
	handler := api.NewServer(api.Dependencies{Acquirer: acq}, logging.NewNop()).Handler()
	req := httptest.NewRequest(http.MethodPost, "/api/acquire", strings.NewReader(`{"url":"x"}`))
	req.Header.Set(api.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if acq.gotID != "req-123" || rec.Header().Get(api.RequestIDHeader) != "req-123" {
		t.Fatalf("expected caller request id, got ctx=%q header=%q", acq.gotID, rec.Header().Get(api.RequestIDHeader))
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		marker error
		status int
		kind   string
	}{
		{services.ErrValidation, http.StatusBadRequest, "validation"},
		{services.ErrNotFound, http.StatusNotFound, "not_found"},
		{services.ErrToolUnavailable, http.StatusServiceUnavailable, "tool_unavailable"},
		{services.ErrExternalTool, http.StatusInternalServerError, "external_tool"},
	}
	for _, tt := range tests {
		acq := &fakeAcquirer{err: services.Wrap(tt.marker, "acquisition", "acquire", "boom", nil)}
		handler := api.NewServer(api.Dependencies{Acquirer: acq}, logging.NewNop()).Handler()
		rec := do(t, handler, http.MethodPost, "/api/acquire", `{"url":"x"}`)
		if rec.Code != tt.status {
			t.Fatalf("%v: status = %d, want %d", tt.marker, rec.Code, tt.status)
		}
		body := decode[api.ErrorResponse](t, rec)
		if body.Kind != tt.kind || !strings.Contains(body.Error, "boom") {
			t.Fatalf("%v: unexpected body %+v", tt.marker, body)
		}
	}
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	handler := api.NewServer(api.Dependencies{Acquirer: &fakeAcquirer{}}, logging.NewNop()).Handler()
	rec := do(t, handler, http.MethodPost, "/api/acquire", `{"url":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = do(t, handler, http.MethodPost, "/api/acquire", `{"link":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown fields should be rejected, status = %d", rec.Code)
	}
}

func TestResolveSubtitles(t *testing.T) {
	handler := api.NewServer(api.Dependencies{Subtitles: fakeResolver{}}, logging.NewNop()).Handler()

	rec := do(t, handler, http.MethodPost, "/api/subtitles/resolve", `{"media_path":""}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	defaults := decode[api.SubtitlesResponse](t, rec)
	if defaults.Origin != string(subtitles.OriginDefault) || len(defaults.Cues) != len(subtitles.DefaultCues()) {
		t.Fatalf("unexpected default response %+v", defaults)
	}

	rec = do(t, handler, http.MethodPost, "/api/subtitles/resolve", `{"media_path":"/tmp/clip.mp4"}`)
	doc := decode[api.SubtitlesResponse](t, rec)
	if doc.Origin != string(subtitles.OriginReused) || doc.Path != "/tmp/clip.vtt" || len(doc.Cues) != 1 {
		t.Fatalf("unexpected response %+v", doc)
	}

	rec = do(t, handler, http.MethodPost, "/api/subtitles/resolve", `{"media_path":"/tmp/missing.mp4"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

type recordingResolver struct {
	opts []subtitles.Options
}

func (r *recordingResolver) Resolve(_ context.Context, mediaPath string, opts subtitles.Options) (subtitles.Document, error) {
	r.opts = append(r.opts, opts)
	return subtitles.Document{Origin: subtitles.OriginReused, Path: subtitles.CanonicalPath(mediaPath)}, nil
}

func TestResolveSubtitlesTriesPlatformCaptionsByDefault(t *testing.T) {
	resolver := &recordingResolver{}
	handler := api.NewServer(api.Dependencies{Subtitles: resolver}, logging.NewNop()).Handler()

	for _, body := range []string{
		`{"media_path":"/tmp/clip.mp4"}`,
		`{"media_path":"/tmp/clip.mp4","try_platform_auto":false}`,
	} {
		if rec := do(t, handler, http.MethodPost, "/api/subtitles/resolve", body); rec.Code != http.StatusOK {
			t.Fatalf("status = %d for %s", rec.Code, body)
		}
	}
	if len(resolver.opts) != 2 || !resolver.opts[0].TryPlatformAuto || resolver.opts[1].TryPlatformAuto {
		t.Fatalf("unexpected options %+v", resolver.opts)
	}
}

func TestTransformEndpointsWithRealService(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	video := filepath.Join(t.TempDir(), "clip.mp4")
	testsupport.WriteFile(t, video, 16)
	script := testsupport.NewToolScript().
		On("ffmpeg", testsupport.Succeed("")).
		On("ffprobe", testsupport.Succeed(`{"streams":[{"index":0,"codec_type":"video","width":1920,"height":1080}]}`))
	svc := transform.NewService(cfg, script.Gateway(), logging.NewNop(), transform.WithRecorder(store))
	handler := api.NewServer(api.Dependencies{Transformer: svc, History: store}, logging.NewNop()).Handler()

	rec := do(t, handler, http.MethodPost, "/api/transform/vertical", `{"video_path":"`+video+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("vertical status = %d body=%s", rec.Code, rec.Body.String())
	}
	vertical := decode[transform.Result](t, rec)
	if !vertical.Success || vertical.OutputPath != transform.VerticalOutputPath(video) {
		t.Fatalf("unexpected vertical result %+v", vertical)
	}

	rec = do(t, handler, http.MethodPost, "/api/transform/extract-audio", `{"video_path":"`+filepath.Join(t.TempDir(), "nope.mp4")+`"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("extract-audio status = %d", rec.Code)
	}
	failed := decode[transform.Result](t, rec)
	if failed.Success || failed.Error == "" {
		t.Fatalf("unexpected failure result %+v", failed)
	}

	rec = do(t, handler, http.MethodGet, "/api/history?limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
	hist := decode[api.HistoryResponse](t, rec)
	if len(hist.Exports) != 2 || hist.Exports[0].Kind != history.ExportExtractAudio || hist.Exports[1].Kind != history.ExportVertical {
		t.Fatalf("unexpected history %+v", hist.Exports)
	}
	if hist.Exports[0].RequestID == "" || hist.Exports[0].RequestID == hist.Exports[1].RequestID {
		t.Fatal("each request should carry its own id")
	}

	rec = do(t, handler, http.MethodGet, "/api/history?limit=zero", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid limit status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	checks := []preflight.Result{{Name: "FFmpeg", Passed: true}, {Name: "Downloader", Optional: true}}
	handler := api.NewServer(api.Dependencies{
		Health: func(context.Context) []preflight.Result { return checks },
	}, logging.NewNop()).Handler()

	rec := do(t, handler, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK || decode[api.HealthResponse](t, rec).Status != "ok" {
		t.Fatalf("unexpected health %d %s", rec.Code, rec.Body.String())
	}

	checks = append(checks, preflight.Result{Name: "Work directory"})
	rec = do(t, handler, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusServiceUnavailable || decode[api.HealthResponse](t, rec).Status != "degraded" {
		t.Fatalf("unexpected degraded health %d %s", rec.Code, rec.Body.String())
	}
}

func TestUnconfiguredAndUnknownRoutes(t *testing.T) {
	handler := api.NewServer(api.Dependencies{}, logging.NewNop()).Handler()
	if rec := do(t, handler, http.MethodPost, "/api/voice", `{"text":"hi"}`); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("voice status = %d", rec.Code)
	}
	if rec := do(t, handler, http.MethodGet, "/api/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route status = %d", rec.Code)
	}
	if rec := do(t, handler, http.MethodGet, "/api/acquire", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method status = %d", rec.Code)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv := api.NewServer(api.Dependencies{}, logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- srv.ListenAndServe(ctx, "127.0.0.1:0", func(addr string) { addrCh <- addr })
	}()
	addr := <-addrCh
	resp, err := http.Get("http://" + addr + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("ListenAndServe: %v", err)
	}
}
