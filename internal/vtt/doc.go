// Package vtt converts between the canonical cue sequence and WebVTT text.
//
// Serialize emits a header, then one block per cue (index, timing line, text,
// blank separator). Parse accepts arbitrary WebVTT: header and metadata lines
// are skipped, bare numeric cue identifiers are ignored, multi-line cue text
// is joined with single spaces, and cues without text are dropped. Input
// order is preserved; cues are never re-sorted.
//
// Timestamps are HH:MM:SS.mmm with truncating (floor) millisecond precision.
package vtt
