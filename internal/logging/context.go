package logging

import (
	"context"
	"log/slog"

	"clipper/internal/services"
)

// Structured keys shared by every clipper log line.
const (
	FieldComponent     = "component"
	FieldStage         = "stage"
	FieldSourceURL     = "source_url"
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies a line for filtering, e.g. tool_missing or subtitle_resolved.
	FieldEventType = "event_type"
	// FieldErrorHint is the next step suggested to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact describes what the user loses when a warning fires.
	FieldImpact = "impact"
	FieldTool   = "tool"
)

// WithContext tags logger with the stage, source URL, and request ID carried
// by ctx. Values already absent from ctx are skipped.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var args []any
	if stage, ok := services.StageFromContext(ctx); ok {
		args = append(args, slog.String(FieldStage, stage))
	}
	if source, ok := services.SourceURLFromContext(ctx); ok {
		args = append(args, slog.String(FieldSourceURL, source))
	}
	if id, ok := services.RequestIDFromContext(ctx); ok {
		args = append(args, slog.String(FieldCorrelationID, id))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
