// Package ytdlp wraps the yt-dlp downloader.
//
// Client builds argument lists for metadata, video, audio, subtitle,
// thumbnail, and auto-caption requests and runs them through the tools
// gateway. Bootstrapper makes the binary available when it is missing:
// it tries the configured package-manager command, then downloads the
// platform release binary into bin_dir under a file lock so concurrent
// acquisitions never race. OEmbedClient covers the metadata-only path when
// no downloader can be obtained.
package ytdlp
