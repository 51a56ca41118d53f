package voice_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"clipper/internal/logging"
	"clipper/internal/services"
	"clipper/internal/testsupport"
	"clipper/internal/tools"
	"clipper/internal/voice"
)

func writeOutput(inv tools.Invocation) (tools.Output, error) {
	if err := os.WriteFile(testsupport.LastArg(inv.Args), []byte("ID3"), 0o644); err != nil {
		return tools.Output{}, err
	}
	return tools.Output{}, nil
}

func TestEstimateDuration(t *testing.T) {
	tests := []struct {
		text  string
		speed float64
		want  int
	}{
		{"one", 1, 1},
		{"one two three four five six", 1, 3},
		{"one two three four five six", 2, 2},
		{"a b c d e f g h i j", 1, 4},
		{"   ", 1, 1},
	}
	for _, tt := range tests {
		if got := voice.EstimateDuration(tt.text, 2.5, tt.speed); got != tt.want {
			t.Fatalf("EstimateDuration(%q, %v) = %d, want %d", tt.text, tt.speed, got, tt.want)
		}
	}
}

func TestCacheKeyDependsOnTextAndOptions(t *testing.T) {
	base := voice.CacheKey("hello", voice.Options{})
	if len(base) != 32 {
		t.Fatalf("expected hex md5, got %q", base)
	}
	if base != voice.CacheKey("hello", voice.Options{Voice: "default", Speed: 1, Pitch: 1, Emotion: "neutral"}) {
		t.Fatal("zero options should normalize to the defaults")
	}
	if base == voice.CacheKey("hello", voice.Options{Speed: 1.5}) {
		t.Fatal("speed should change the key")
	}
	if base == voice.CacheKey("hello there", voice.Options{}) {
		t.Fatal("text should change the key")
	}
}

func TestGenerateThenCacheHit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	script := testsupport.NewToolScript().On("ffmpeg", writeOutput)
	svc := voice.NewService(cfg, script.Gateway(), logging.NewNop())

	clip, err := svc.Generate(context.Background(), "one two three four five six", voice.Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if clip.Cached || clip.DurationSeconds != 3 {
		t.Fatalf("unexpected clip %+v", clip)
	}
	if filepath.Dir(clip.AudioPath) != cfg.Paths.VoiceCacheDir || filepath.Ext(clip.AudioPath) != ".mp3" {
		t.Fatalf("unexpected clip path %q", clip.AudioPath)
	}
	args := script.CallsTo("ffmpeg")[0].Args
	if testsupport.ArgAfter(args, "-i") != "anullsrc=r=44100:cl=mono" ||
		testsupport.ArgAfter(args, "-t") != "3" ||
		testsupport.ArgAfter(args, "-acodec") != "libmp3lame" {
		t.Fatalf("unexpected ffmpeg args %v", args)
	}

	again, err := svc.Generate(context.Background(), "one two three four five six", voice.Options{})
	if err != nil {
		t.Fatalf("Generate cached: %v", err)
	}
	if !again.Cached || again.AudioPath != clip.AudioPath || again.DurationSeconds != 1 {
		t.Fatalf("unexpected cached clip %+v", again)
	}
	if len(script.CallsTo("ffmpeg")) != 1 {
		t.Fatal("cache hit must not invoke ffmpeg")
	}
}

func TestGenerateFailureWritesEmptyClip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	script := testsupport.NewToolScript().On("ffmpeg", testsupport.Fail("Unknown encoder 'libmp3lame'"))
	svc := voice.NewService(cfg, script.Gateway(), logging.NewNop())

	clip, err := svc.Generate(context.Background(), "hello world", voice.Options{Voice: "narrator"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	info, err := os.Stat(clip.AudioPath)
	if err != nil || info.Size() != 0 {
		t.Fatalf("expected empty clip file, info=%v err=%v", info, err)
	}
}

func TestGenerateRetriesAfterEmptyClip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	attempts := 0
	script := testsupport.NewToolScript().On("ffmpeg", func(inv tools.Invocation) (tools.Output, error) {
		attempts++
		if attempts == 1 {
			return tools.Output{Stderr: "Unknown encoder 'libmp3lame'"}, errors.New("exit status 1")
		}
		return writeOutput(inv)
	})
	svc := voice.NewService(cfg, script.Gateway(), logging.NewNop())

	if _, err := svc.Generate(context.Background(), "hello world", voice.Options{}); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	clip, err := svc.Generate(context.Background(), "hello world", voice.Options{})
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if clip.Cached || attempts != 2 {
		t.Fatalf("empty clip should not be a cache hit: cached=%v attempts=%d", clip.Cached, attempts)
	}
	if info, err := os.Stat(clip.AudioPath); err != nil || info.Size() == 0 {
		t.Fatalf("expected regenerated clip, info=%v err=%v", info, err)
	}
}

func TestGenerateRequiresText(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc := voice.NewService(cfg, testsupport.NewToolScript().Gateway(), logging.NewNop())
	if _, err := svc.Generate(context.Background(), "  ", voice.Options{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCleanupRemovesStaleClips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := cfg.Paths.VoiceCacheDir
	stale := filepath.Join(dir, "stale.mp3")
	fresh := filepath.Join(dir, "fresh.mp3")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{stale, fresh, other} {
		testsupport.WriteFile(t, path, 4)
	}
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	old := now.Add(-8 * 24 * time.Hour)
	for _, path := range []string{stale, other} {
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	if err := os.Chtimes(fresh, now, now); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	svc := voice.NewService(cfg, testsupport.NewToolScript().Gateway(), logging.NewNop())
	if removed := svc.Cleanup(now); removed != 1 {
		t.Fatalf("expected one removal, got %d", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale clip still present: %v", err)
	}
	for _, path := range []string{fresh, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to remain: %v", path, err)
		}
	}
}
