// Package tools is the single doorway to the external binaries clipper drives:
// the downloader (yt-dlp), the transcoder (ffmpeg), and its probe (ffprobe).
//
// Gateway.Run spawns one subprocess per call and always returns a Result;
// a missing binary, a nonzero exit, and a timeout all surface as
// ExitSucceeded=false with the reason in Stderr. No retries happen here.
// Gateway.Probe answers whether a binary can be invoked at all.
//
// The process spawner is a RunFunc so tests can substitute a recorder that
// never touches the host.
package tools
