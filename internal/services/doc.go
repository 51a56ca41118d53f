// Package services defines shared utilities consumed by the acquisition,
// subtitle, and transform pipelines.
//
// Key responsibilities:
//   - Context helpers that stamp stage names, source URLs, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (tool unavailable, missing asset, fatal workspace errors)
//     without parsing messages.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across the tool.
package services
