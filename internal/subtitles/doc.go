// Package subtitles resolves a cue sequence for a media file.
//
// Resolution tries a fixed chain of strategies and the first that yields cues
// wins: reuse of the canonical sibling .vtt, conversion of a sibling caption
// file, extraction of an embedded subtitle stream, a platform auto-caption
// fetch, and finally placeholder synthesis from the probed media duration.
// Every strategy except the last may fail; failures are logged and the next
// strategy runs. Resolved cues are always written to the canonical path so a
// later call short-circuits on reuse.
//
// The package also owns candidate selection for subtitle files left behind
// by downloader requests and the fixed default cues used when no media path
// is supplied.
package subtitles
