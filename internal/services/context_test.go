package services_test

import (
	"context"
	"testing"

	"clipper/internal/services"
)

func TestTraceAccumulates(t *testing.T) {
	ctx := services.WithStage(context.Background(), "acquisition")
	ctx = services.WithSourceURL(ctx, "https://youtu.be/abc")
	ctx = services.WithRequestID(ctx, "req-123")
	ctx = services.WithStage(ctx, "subtitles")

	want := services.Trace{Stage: "subtitles", SourceURL: "https://youtu.be/abc", RequestID: "req-123"}
	if got := services.TraceFromContext(ctx); got != want {
		t.Fatalf("trace = %+v, want %+v", got, want)
	}
	if url, ok := services.SourceURLFromContext(ctx); !ok || url != want.SourceURL {
		t.Fatalf("unexpected url: %q %v", url, ok)
	}
}

func TestBlankValuesLeaveContextUntouched(t *testing.T) {
	base := context.Background()
	if services.WithStage(base, "") != base || services.WithRequestID(base, "") != base {
		t.Fatal("blank values should return the original context")
	}
	if _, ok := services.StageFromContext(base); ok {
		t.Fatal("expected no stage value")
	}
}

func TestEnsureRequestID(t *testing.T) {
	ctx, id := services.EnsureRequestID(context.Background())
	if len(id) != 36 {
		t.Fatalf("expected uuid, got %q", id)
	}
	if got, _ := services.RequestIDFromContext(ctx); got != id {
		t.Fatalf("context carries %q, want %q", got, id)
	}
	same, again := services.EnsureRequestID(services.WithRequestID(context.Background(), "req-1"))
	if again != "req-1" {
		t.Fatalf("existing id should be kept, got %q", again)
	}
	if got, _ := services.RequestIDFromContext(same); got != "req-1" {
		t.Fatalf("unexpected id %q", got)
	}
}
