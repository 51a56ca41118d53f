// Package language normalizes the language codes that show up in caption
// requests and stream metadata.
//
// Configuration accepts ISO 639-1 codes, ISO 639-2 codes, English names, and
// region-tagged forms such as "en-US" or the downloader's "en-orig"; all of
// them reduce to the two-letter code used in subtitle file names.
package language
