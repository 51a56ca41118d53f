// Package acquisition downloads the media assets for a video URL.
//
// Pipeline.Acquire creates a fresh timestamp-named working directory, makes
// the downloader invocable (probing, then installing or downloading it),
// fetches metadata and then each requested asset independently. A failed
// asset stays absent and is named in the result warning; it never aborts the
// call. When the downloader cannot be made available the pipeline degrades to
// a metadata-only result built from the platform's oEmbed endpoint.
//
// The downloader names its own output files, so every asset goes through a
// discover-and-adopt step: candidates are listed by extension in directory
// order, the one carrying the asset's output-template prefix wins, and it is
// renamed to <sanitized title>.<ext>.
package acquisition
