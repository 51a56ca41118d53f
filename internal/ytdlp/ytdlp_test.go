package ytdlp_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"clipper/internal/logging"
	"clipper/internal/services"
	"clipper/internal/testsupport"
	"clipper/internal/tools"
	"clipper/internal/ytdlp"
)

func TestVideoArgs(t *testing.T) {
	got := ytdlp.VideoArgs("https://youtu.be/abc", "/work", "mp4")
	want := []string{
		"https://youtu.be/abc",
		"-o", filepath.Join("/work", "%(title)s.%(ext)s"),
		"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		"--merge-output-format", "mp4",
		"--restrict-filenames",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("VideoArgs = %v, want %v", got, want)
	}
}

func TestSubtitleArgsModes(t *testing.T) {
	manual := ytdlp.SubtitleArgs("u", "/w", "EN", ytdlp.SubtitlesManual)
	if !testsupport.HasArg(manual, "--write-sub") || testsupport.ArgAfter(manual, "--sub-lang") != "en" {
		t.Fatalf("unexpected manual args: %v", manual)
	}
	if testsupport.ArgAfter(manual, "-o") != filepath.Join("/w", "manual_subs_%(title)s") {
		t.Fatalf("unexpected manual template: %v", manual)
	}
	auto := ytdlp.SubtitleArgs("u", "/w", "en", ytdlp.SubtitlesAuto)
	if !testsupport.HasArg(auto, "--write-auto-sub") || testsupport.ArgAfter(auto, "--sub-format") != "vtt" {
		t.Fatalf("unexpected auto args: %v", auto)
	}
	all := ytdlp.SubtitleArgs("u", "/w", "en", ytdlp.SubtitlesAll)
	if !testsupport.HasArg(all, "--all-subs") || testsupport.HasArg(all, "--sub-lang") {
		t.Fatalf("unexpected all args: %v", all)
	}
}

func TestAutoCaptionArgs(t *testing.T) {
	got := ytdlp.AutoCaptionArgs("https://www.youtube.com/watch?v=abcdefghijk", "/w/clip", "en")
	want := []string{"--write-auto-sub", "--skip-download", "--sub-lang", "en", "--convert-subs", "vtt", "--output", "/w/clip", "https://www.youtube.com/watch?v=abcdefghijk"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AutoCaptionArgs = %v, want %v", got, want)
	}
}

func TestDecodeMetadata(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	meta, err := ytdlp.DecodeMetadata([]byte(`{"id":"abc","title":"T","duration":12.5,"uploader":"Up","upload_date":"20240102"}`), now)
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if meta.Channel != "Up" || meta.UploadDate != "2024-01-02" || meta.DurationSeconds != 12.5 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}

	meta, err = ytdlp.DecodeMetadata([]byte("{}\nWARNING: trailing noise"), now)
	if err != nil {
		t.Fatalf("DecodeMetadata defaults: %v", err)
	}
	if meta.Title != "Unknown Title" || meta.Channel != "Unknown" || meta.UploadDate != "2026-10-15" || meta.ID != "unknown" {
		t.Fatalf("unexpected defaults: %+v", meta)
	}

	if _, err := ytdlp.DecodeMetadata([]byte("not json"), now); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestVideoIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ?t=42", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=x", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/channel/xyz", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ytdlp.VideoIDFromURL(tt.url)
		if got != tt.want || ok != tt.ok {
			t.Errorf("VideoIDFromURL(%q) = %q,%v want %q,%v", tt.url, got, ok, tt.want, tt.ok)
		}
	}
}

func TestVideoIDFromFilename(t *testing.T) {
	if id, ok := ytdlp.VideoIDFromFilename("/tmp/youtube_1/clip-dQw4w9WgXcQ.mp4"); !ok || id != "clip-dQw4w9" {
		t.Fatalf("unexpected id %q ok=%v", id, ok)
	}
	if _, ok := ytdlp.VideoIDFromFilename("/tmp/a b.mp4"); ok {
		t.Fatal("expected no identifier in short name")
	}
}

func TestClientMetadataAndDownloads(t *testing.T) {
	script := testsupport.NewToolScript().On("yt-dlp", func(inv tools.Invocation) (tools.Output, error) {
		if testsupport.HasArg(inv.Args, "--dump-json") {
			return tools.Output{Stdout: `{"id":"abc","title":"Clip","channel":"Chan","upload_date":"20250101"}`}, nil
		}
		if inv.OnLine != nil {
			inv.OnLine(tools.StreamStdout, "[download]  50.0% of 10MiB")
		}
		return tools.Output{}, nil
	})
	client := ytdlp.NewClient("yt-dlp", script.Gateway(), ytdlp.Options{VideoFormat: "mp4"}, logging.NewNop())

	meta, err := client.Metadata(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta.Title != "Clip" || meta.Channel != "Chan" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if res := client.DownloadVideo(context.Background(), "https://youtu.be/abc", t.TempDir()); !res.ExitSucceeded {
		t.Fatalf("expected download success, stderr=%q", res.Stderr)
	}
	if len(script.Calls()) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(script.Calls()))
	}
	if client.WatchURL("abc") != "https://www.youtube.com/watch?v=abc" {
		t.Fatalf("unexpected watch url: %q", client.WatchURL("abc"))
	}
}

func TestClientMetadataFailureIsExternalToolError(t *testing.T) {
	script := testsupport.NewToolScript().On("yt-dlp", testsupport.Fail("ERROR: Video unavailable"))
	client := ytdlp.NewClient("yt-dlp", script.Gateway(), ytdlp.Options{}, nil)
	_, err := client.Metadata(context.Background(), "https://youtu.be/abc")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Video unavailable") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestBootstrapReturnsConfiguredBinaryWhenAvailable(t *testing.T) {
	script := testsupport.NewToolScript().On("yt-dlp", testsupport.Succeed("2025.01.01"))
	boot := ytdlp.NewBootstrapper(ytdlp.BootstrapConfig{Binary: "yt-dlp", BinDir: t.TempDir()}, script.Gateway(), nil)
	path, err := boot.Ensure(context.Background())
	if err != nil || path != "yt-dlp" {
		t.Fatalf("Ensure = %q, %v", path, err)
	}
	if len(script.Calls()) != 1 {
		t.Fatalf("expected a single probe, got %d calls", len(script.Calls()))
	}
}

func TestBootstrapPackageInstall(t *testing.T) {
	installed := false
	script := testsupport.NewToolScript().
		On("pip", func(tools.Invocation) (tools.Output, error) {
			installed = true
			return tools.Output{}, nil
		}).
		On("yt-dlp", func(tools.Invocation) (tools.Output, error) {
			if installed {
				return tools.Output{Stdout: "2025.01.01"}, nil
			}
			return tools.Output{}, testsupport.ErrToolMissing
		})
	boot := ytdlp.NewBootstrapper(ytdlp.BootstrapConfig{
		Binary:         "yt-dlp",
		BinDir:         t.TempDir(),
		PackageInstall: true,
		PackageCommand: []string{"pip", "install", "yt-dlp"},
	}, script.Gateway(), nil)

	path, err := boot.Ensure(context.Background())
	if err != nil || path != "yt-dlp" {
		t.Fatalf("Ensure = %q, %v", path, err)
	}
	pipCalls := script.CallsTo("pip")
	if len(pipCalls) != 1 || !reflect.DeepEqual(pipCalls[0].Args, []string{"install", "yt-dlp"}) {
		t.Fatalf("unexpected pip calls: %+v", pipCalls)
	}
}

func TestBootstrapDownloadsReleaseBinary(t *testing.T) {
	var requested string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		_, _ = w.Write([]byte("#!/bin/sh\necho 2025.01.01\n"))
	}))
	defer server.Close()

	binDir := t.TempDir()
	script := testsupport.NewToolScript().
		On("pip", testsupport.Fail("pip: command not found")).
		On("yt-dlp", func(inv tools.Invocation) (tools.Output, error) {
			if filepath.IsAbs(inv.Name) {
				if _, err := os.Stat(inv.Name); err == nil {
					return tools.Output{Stdout: "2025.01.01"}, nil
				}
			}
			return tools.Output{}, testsupport.ErrToolMissing
		})
	boot := ytdlp.NewBootstrapper(ytdlp.BootstrapConfig{
		Binary:         "yt-dlp",
		BinDir:         binDir,
		PackageInstall: true,
		PackageCommand: []string{"pip", "install", "yt-dlp"},
		ReleaseBaseURL: server.URL + "/download/",
	}, script.Gateway(), nil, ytdlp.WithGOOS("linux"), ytdlp.WithHTTPClient(server.Client()))

	path, err := boot.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if path != filepath.Join(binDir, "yt-dlp") {
		t.Fatalf("unexpected path %q", path)
	}
	if requested != "/download/yt-dlp" {
		t.Fatalf("unexpected release path %q", requested)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat binary: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("expected executable binary, mode %o", info.Mode().Perm())
	}
	if ytdlp.AssetName("windows") != "yt-dlp.exe" {
		t.Fatal("expected .exe asset on windows")
	}
}

func TestBootstrapExhaustedIsToolUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	script := testsupport.NewToolScript()
	boot := ytdlp.NewBootstrapper(ytdlp.BootstrapConfig{
		Binary:         "yt-dlp",
		BinDir:         t.TempDir(),
		ReleaseBaseURL: server.URL,
	}, script.Gateway(), nil, ytdlp.WithHTTPClient(server.Client()))

	_, err := boot.Ensure(context.Background())
	if !errors.Is(err, services.ErrToolUnavailable) {
		t.Fatalf("expected tool unavailable, got %v", err)
	}
}

func TestOEmbedClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oembed", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("url") != "https://www.youtube.com/watch?v=abcdefghijk" || r.URL.Query().Get("format") != "json" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"title":"Hello","author_name":"Someone"}`))
	})
	mux.HandleFunc("/vi/abcdefghijk/maxresdefault.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg-bytes"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := ytdlp.NewOEmbedClient(server.URL+"/oembed", "https://www.youtube.com/watch?v=%s", server.URL+"/vi/%s/maxresdefault.jpg", time.Second)
	meta, err := client.Fetch(context.Background(), "abcdefghijk")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if meta.Title != "Hello" || meta.AuthorName != "Someone" {
		t.Fatalf("unexpected oembed: %+v", meta)
	}

	dest := filepath.Join(t.TempDir(), "thumb.jpg")
	if err := client.DownloadThumbnail(context.Background(), "abcdefghijk", dest); err != nil {
		t.Fatalf("DownloadThumbnail: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "jpeg-bytes" {
		t.Fatalf("unexpected thumbnail %q err=%v", data, err)
	}
	if err := client.DownloadThumbnail(context.Background(), "missing0000", filepath.Join(t.TempDir(), "x.jpg")); err == nil {
		t.Fatal("expected error for missing thumbnail")
	}
}
