package services

import (
	"context"

	"github.com/google/uuid"
)

// Trace is the per-operation identity that travels with a context and ends up
// on every log line and history row the operation produces.
type Trace struct {
	Stage     string
	SourceURL string
	RequestID string
}

type traceKey struct{}

// TraceFromContext returns the trace carried by ctx; the zero Trace when none.
func TraceFromContext(ctx context.Context) Trace {
	if ctx == nil {
		return Trace{}
	}
	trace, _ := ctx.Value(traceKey{}).(Trace)
	return trace
}

func withTrace(ctx context.Context, update func(*Trace)) context.Context {
	trace := TraceFromContext(ctx)
	update(&trace)
	return context.WithValue(ctx, traceKey{}, trace)
}

// WithStage records the pipeline stage; blank names leave ctx untouched.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return withTrace(ctx, func(t *Trace) { t.Stage = stage })
}

func StageFromContext(ctx context.Context) (string, bool) {
	stage := TraceFromContext(ctx).Stage
	return stage, stage != ""
}

// WithSourceURL records the video URL being processed.
func WithSourceURL(ctx context.Context, url string) context.Context {
	if url == "" {
		return ctx
	}
	return withTrace(ctx, func(t *Trace) { t.SourceURL = url })
}

func SourceURLFromContext(ctx context.Context) (string, bool) {
	url := TraceFromContext(ctx).SourceURL
	return url, url != ""
}

// WithRequestID records the correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return withTrace(ctx, func(t *Trace) { t.RequestID = id })
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	id := TraceFromContext(ctx).RequestID
	return id, id != ""
}

// EnsureRequestID returns ctx unchanged when it already carries a request ID,
// otherwise a child context with a fresh UUID.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id, ok := RequestIDFromContext(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return WithRequestID(ctx, id), id
}
