// Package main hosts the clipper CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into calls on the
// internal services: acquisition, subtitle resolution, video transforms,
// voiceover clips, history listing, the HTTP server, and diagnostics. It
// centralizes configuration resolution, logger setup, and service wiring so
// subcommands can focus on output.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
