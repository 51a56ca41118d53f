// Package ffprobe provides a typed wrapper around ffprobe output.
//
// Key types:
//   - Prober: issues stream, dimension, and duration queries through a Runner
//   - Result/Stream: decoded JSON payloads; Stream carries language tags
//
// Queries go through the tools gateway so timeouts and logging apply
// uniformly and tests can script the probe output.
package ffprobe
