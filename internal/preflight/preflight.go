package preflight

import (
	"context"
	"path/filepath"

	"clipper/internal/config"
	"clipper/internal/tools"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail"`
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config, gateway *tools.Gateway) []Result {
	if cfg == nil || gateway == nil {
		return nil
	}

	results := []Result{
		CheckDownloader(ctx, gateway, cfg.Tools.Downloader, filepath.Join(cfg.Paths.BinDir, "yt-dlp")),
		CheckTool(ctx, gateway, "FFmpeg", cfg.Tools.FFmpeg, "-version"),
		CheckTool(ctx, gateway, "FFprobe", cfg.Tools.FFprobe, "-version"),
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	// Created on first export or bootstrap.
	output := CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir)
	output.Optional = true
	bin := CheckDirectoryAccess("Binary directory", cfg.Paths.BinDir)
	bin.Optional = true

	return append(results, output, bin)
}

// Failed reports whether any required check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}
