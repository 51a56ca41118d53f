package acquisition_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clipper/internal/acquisition"
	"clipper/internal/config"
	"clipper/internal/fileutil"
	"clipper/internal/logging"
	"clipper/internal/notifications"
	"clipper/internal/services"
	"clipper/internal/testsupport"
	"clipper/internal/tools"
	"clipper/internal/vtt"
	"clipper/internal/ytdlp"
)

const (
	videoTitle = "My Video: Part 1/2?"
	safeTitle  = "My Video_ Part 1_2_"
	metaJSON   = `{"id":"dQw4w9WgXcQ","title":"My Video: Part 1/2?","description":"desc","duration":12,"channel":"Chan","upload_date":"20240315"}`
	sampleVTT  = "WEBVTT\n\n1\n00:00:00.000 --> 00:00:02.000\nHi\n\n"
)

var fixedNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

type downloaderBehaviour struct {
	failVideo     bool
	skipSubtitles bool
}

// downloader emulates yt-dlp: it writes files named the way the real tool
// does into the directory of the -o template.
func downloader(t *testing.T, b downloaderBehaviour) testsupport.ToolHandler {
	return func(inv tools.Invocation) (tools.Output, error) {
		args := inv.Args
		if testsupport.HasArg(args, "--version") {
			return tools.Output{Stdout: "2025.01.01"}, nil
		}
		if testsupport.HasArg(args, "--dump-json") {
			return tools.Output{Stdout: metaJSON}, nil
		}
		dir := filepath.Dir(testsupport.ArgAfter(args, "-o"))
		write := func(name, content string) (tools.Output, error) {
			if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
				t.Errorf("write %s: %v", name, err)
			}
			return tools.Output{}, nil
		}
		switch {
		case testsupport.HasArg(args, "--merge-output-format"):
			if b.failVideo {
				return tools.Output{Stderr: "ERROR: Requested format is not available"}, errors.New("exit status 1")
			}
			return write("My_Video_Part_1_2.mp4", "video")
		case testsupport.HasArg(args, "-x"):
			return write("audio_My_Video_Part_1_2.mp3", "audio")
		case testsupport.HasArg(args, "--write-sub"):
			if b.skipSubtitles {
				return tools.Output{}, nil
			}
			return write("manual_subs_My_Video_Part_1_2.en.vtt", sampleVTT)
		case testsupport.HasArg(args, "--write-auto-sub"):
			if b.skipSubtitles {
				return tools.Output{}, nil
			}
			return write("auto_subs_My_Video_Part_1_2.en.vtt", sampleVTT)
		case testsupport.HasArg(args, "--all-subs"):
			return tools.Output{}, nil
		case testsupport.HasArg(args, "--write-thumbnail"):
			return write("thumb_My_Video_Part_1_2.jpg", "jpeg")
		}
		return tools.Output{}, nil
	}
}

func newPipeline(t *testing.T, cfg *config.Config, script *testsupport.ToolScript, opts ...acquisition.Option) *acquisition.Pipeline {
	t.Helper()
	opts = append([]acquisition.Option{acquisition.WithClock(func() time.Time { return fixedNow })}, opts...)
	return acquisition.NewPipeline(cfg, script.Gateway(), logging.NewNop(), opts...)
}

func TestAcquireDownloadsAndAdoptsAllAssets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	script := testsupport.NewToolScript().On("yt-dlp", downloader(t, downloaderBehaviour{}))
	pipeline := newPipeline(t, cfg, script, acquisition.WithRecorder(store))

	result, err := pipeline.Acquire(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", acquisition.DefaultOptions())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if result.Warning != "" {
		t.Fatalf("unexpected warning %q", result.Warning)
	}
	if result.Title != videoTitle || result.Channel != "Chan" || result.UploadDate != "2024-03-15" || result.DurationSeconds != 12 {
		t.Fatalf("unexpected metadata: %+v", result)
	}
	if result.RequestID == "" {
		t.Fatal("expected request id")
	}
	wantDir := filepath.Join(cfg.Paths.WorkDir, "youtube_1792056600000")
	if result.WorkingDirectory != wantDir {
		t.Fatalf("working directory = %q, want %q", result.WorkingDirectory, wantDir)
	}

	want := map[acquisition.AssetKind]string{
		acquisition.AssetVideo:     safeTitle + ".mp4",
		acquisition.AssetAudio:     safeTitle + ".mp3",
		acquisition.AssetSubtitle:  safeTitle + ".vtt",
		acquisition.AssetThumbnail: safeTitle + ".jpg",
	}
	if len(result.Assets) != len(want) {
		t.Fatalf("expected %d assets, got %+v", len(want), result.Assets)
	}
	for kind, name := range want {
		asset, ok := result.Asset(kind)
		if !ok || !asset.Present {
			t.Fatalf("asset %s missing: %+v", kind, asset)
		}
		if asset.Path != filepath.Join(wantDir, name) || !fileutil.Exists(asset.Path) {
			t.Fatalf("asset %s path = %q, want %q", kind, asset.Path, name)
		}
	}
	if fileutil.Exists(filepath.Join(wantDir, "auto_subs_My_Video_Part_1_2.en.vtt")) {
		t.Fatal("non-selected auto subtitle should be deleted")
	}
	if hasCallWith(script, "--all-subs") {
		t.Fatal("broad subtitle request should not run when a candidate exists")
	}

	rows, err := store.RecentAcquisitions(context.Background(), 5)
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected one history row, got %d err=%v", len(rows), err)
	}
	if !rows[0].HasVideo || !rows[0].HasAudio || !rows[0].HasSubtitles || !rows[0].HasThumbnail || rows[0].RequestID != result.RequestID {
		t.Fatalf("unexpected history row: %+v", rows[0])
	}
}

func hasCallWith(script *testsupport.ToolScript, arg string) bool {
	for _, call := range script.CallsTo("yt-dlp") {
		if testsupport.HasArg(call.Args, arg) {
			return true
		}
	}
	return false
}

func TestAcquireMetadataOnlyWhenNothingRequested(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	script := testsupport.NewToolScript().On("yt-dlp", downloader(t, downloaderBehaviour{}))
	pipeline := newPipeline(t, cfg, script)

	result, err := pipeline.Acquire(context.Background(), "https://youtu.be/dQw4w9WgXcQ", acquisition.Options{})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(result.Assets) != 0 || result.Warning != "" {
		t.Fatalf("expected metadata only, got assets=%+v warning=%q", result.Assets, result.Warning)
	}
	if result.Title != videoTitle || result.Description != "desc" {
		t.Fatalf("unexpected metadata: %+v", result)
	}
	for _, call := range script.Calls() {
		if !testsupport.HasArg(call.Args, "--version") && !testsupport.HasArg(call.Args, "--dump-json") {
			t.Fatalf("unexpected download call: %v", call.Args)
		}
	}
}

func TestAcquireSynthesizesPlaceholderSubtitles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	script := testsupport.NewToolScript().
		On("yt-dlp", downloader(t, downloaderBehaviour{skipSubtitles: true})).
		On("ffprobe", testsupport.Succeed("12\n"))
	pipeline := newPipeline(t, cfg, script)

	result, err := pipeline.Acquire(context.Background(), "https://youtu.be/dQw4w9WgXcQ",
		acquisition.Options{DownloadVideo: true, DownloadSubtitles: true})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !hasCallWith(script, "--all-subs") {
		t.Fatal("expected broad subtitle request after manual and auto produced nothing")
	}
	asset, ok := result.Asset(acquisition.AssetSubtitle)
	if !ok || !asset.Present {
		t.Fatalf("expected placeholder subtitle asset, got %+v", asset)
	}
	if asset.Path != filepath.Join(result.WorkingDirectory, safeTitle+".vtt") {
		t.Fatalf("unexpected subtitle path %q", asset.Path)
	}
	cues, err := vtt.ReadFile(asset.Path)
	if err != nil {
		t.Fatalf("read subtitles: %v", err)
	}
	if len(cues) != 3 || cues[2].End != 12 {
		t.Fatalf("expected 3 placeholder cues ending at 12, got %+v", cues)
	}
}

func TestAcquireSubtitlesWithoutMediaStayAbsent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	script := testsupport.NewToolScript().On("yt-dlp", downloader(t, downloaderBehaviour{skipSubtitles: true}))
	pipeline := newPipeline(t, cfg, script)

	result, err := pipeline.Acquire(context.Background(), "https://youtu.be/dQw4w9WgXcQ", acquisition.Options{DownloadSubtitles: true})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	asset, _ := result.Asset(acquisition.AssetSubtitle)
	if asset.Present {
		t.Fatalf("placeholder needs video or audio, got %+v", asset)
	}
	if !strings.Contains(result.Warning, "subtitle") {
		t.Fatalf("expected warning naming subtitle, got %q", result.Warning)
	}
}

func TestAcquirePartialFailureSetsWarning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	script := testsupport.NewToolScript().On("yt-dlp", downloader(t, downloaderBehaviour{failVideo: true}))
	notifier := &recordingNotifier{}
	pipeline := newPipeline(t, cfg, script, acquisition.WithNotifier(notifier))

	result, err := pipeline.Acquire(context.Background(), "https://youtu.be/dQw4w9WgXcQ", acquisition.DefaultOptions())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	video, _ := result.Asset(acquisition.AssetVideo)
	audio, _ := result.Asset(acquisition.AssetAudio)
	if video.Present || video.Path != "" || !audio.Present {
		t.Fatalf("unexpected assets: video=%+v audio=%+v", video, audio)
	}
	if result.Warning != "Some assets could not be downloaded: video" {
		t.Fatalf("unexpected warning %q", result.Warning)
	}
	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventAcquisitionDegraded {
		t.Fatalf("expected one degraded notification, got %v", notifier.events)
	}
}

type recordingNotifier struct {
	events []notifications.Event
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	r.events = append(r.events, event)
	return nil
}

func oembedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oembed", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"Hello World","author_name":"Someone"}`))
	})
	mux.HandleFunc("/vi/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestAcquireFallsBackToMetadataOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	server := oembedServer(t)
	client := ytdlp.NewOEmbedClient(server.URL+"/oembed", cfg.Acquisition.WatchURLTemplate, server.URL+"/vi/%s/maxresdefault.jpg", time.Second)
	pipeline := newPipeline(t, cfg, testsupport.NewToolScript(), acquisition.WithOEmbedClient(client))

	result, err := pipeline.Acquire(context.Background(), "https://youtu.be/dQw4w9WgXcQ", acquisition.DefaultOptions())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !result.MetadataOnly || !strings.HasPrefix(result.Warning, "Downloader unavailable") {
		t.Fatalf("expected metadata-only warning, got %+v", result)
	}
	if result.VideoID != "dQw4w9WgXcQ" || result.Title != "Hello World" || result.Channel != "Someone" {
		t.Fatalf("unexpected metadata: %+v", result)
	}
	if video, _ := result.Asset(acquisition.AssetVideo); video.Present {
		t.Fatal("metadata-only result must not include video")
	}
	thumb, ok := result.Asset(acquisition.AssetThumbnail)
	if !ok || !thumb.Present || thumb.Path != filepath.Join(result.WorkingDirectory, "Hello World.jpg") {
		t.Fatalf("unexpected thumbnail: %+v", thumb)
	}
}

func TestAcquireFallbackWithoutIdentifierIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	pipeline := newPipeline(t, cfg, testsupport.NewToolScript())

	_, err := pipeline.Acquire(context.Background(), "https://example.com/watch", acquisition.DefaultOptions())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAcquireWorkspaceFailureIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	blocker := filepath.Join(testsupport.BaseDir(cfg), "blocker")
	testsupport.WriteFile(t, blocker, 1)
	cfg.Paths.WorkDir = filepath.Join(blocker, "downloads")
	pipeline := newPipeline(t, cfg, testsupport.NewToolScript())

	_, err := pipeline.Acquire(context.Background(), "https://youtu.be/dQw4w9WgXcQ", acquisition.DefaultOptions())
	if !errors.Is(err, services.ErrWorkspace) {
		t.Fatalf("expected workspace error, got %v", err)
	}
}

func TestAcquireNeverReusesWorkspace(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	script := testsupport.NewToolScript().On("yt-dlp", downloader(t, downloaderBehaviour{}))
	pipeline := newPipeline(t, cfg, script)

	first, err := pipeline.Acquire(context.Background(), "https://youtu.be/dQw4w9WgXcQ", acquisition.Options{})
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	second, err := pipeline.Acquire(context.Background(), "https://youtu.be/dQw4w9WgXcQ", acquisition.Options{})
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if first.WorkingDirectory == second.WorkingDirectory {
		t.Fatalf("workspace reused: %q", first.WorkingDirectory)
	}
	if second.WorkingDirectory != first.WorkingDirectory+"_1" {
		t.Fatalf("unexpected collision suffix: %q", second.WorkingDirectory)
	}
}
