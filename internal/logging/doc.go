// Package logging builds the slog loggers used by clipper commands and the
// HTTP API.
//
// Two formats are supported: a console format that lifts the component and
// request ID into a readable prefix, and JSON lines for machine consumers.
// NewFromConfig writes to stderr and appends to clipper.log in paths.log_dir.
// WithContext tags a logger with the stage, source URL, and request ID carried
// on a context, and WarnWithContext/ErrorWithContext guarantee every problem
// line names an event type and a next step. The package also thins downloader
// progress output and prunes stale cache files.
package logging
