package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// PruneResult counts what a prune pass deleted.
type PruneResult struct {
	Removed int
	Bytes   int64
}

// PruneFiles deletes regular files in dir whose name matches pattern and
// whose modification time is before cutoff. An empty pattern matches every
// file. Removal failures are logged and skipped; a missing dir is a no-op.
func PruneFiles(logger *slog.Logger, dir, pattern string, cutoff time.Time) PruneResult {
	var result PruneResult
	if dir == "" {
		return result
	}
	if pattern == "" {
		pattern = "*"
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return result
	}
	for _, path := range matches {
		info, err := os.Lstat(path)
		if err != nil || !info.Mode().IsRegular() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "stale file could not be removed", "prune_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check ownership of "+dir),
				String(FieldImpact, "stale file stays on disk"),
			)
			continue
		}
		result.Removed++
		result.Bytes += info.Size()
		if logger != nil {
			logger.Debug("stale file removed", String("path", path), String(FieldEventType, "file_pruned"))
		}
	}
	return result
}
