package acquisition

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipper/internal/logging"
)

// Workspace describes one youtube_<millis> working directory.
type Workspace struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	ModTime   time.Time `json:"mod_time"`
	SizeBytes int64     `json:"size_bytes"`
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// CleanResult contains the outcome of a stale workspace cleanup.
type CleanResult struct {
	Removed []Workspace    `json:"removed"`
	Errors  []CleanupError `json:"errors,omitempty"`
	DryRun  bool           `json:"dry_run"`
}

// ListWorkspaces returns the working directories under root in name order.
// Directories that Acquire did not create are ignored. A missing root yields
// no workspaces.
func ListWorkspaces(root string) ([]Workspace, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var workspaces []Workspace
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), workspacePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(root, entry.Name())
		size, _ := dirSize(path)
		workspaces = append(workspaces, Workspace{
			Name:      entry.Name(),
			Path:      path,
			ModTime:   info.ModTime(),
			SizeBytes: size,
		})
	}
	return workspaces, nil
}

// CleanStale removes workspaces last modified before cutoff. With dryRun the
// candidates are reported but left on disk.
func CleanStale(root string, cutoff time.Time, dryRun bool, logger *slog.Logger) CleanResult {
	result := CleanResult{DryRun: dryRun}
	workspaces, err := ListWorkspaces(root)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: root, Error: err.Error()})
		return result
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	for _, ws := range workspaces {
		if !ws.ModTime.Before(cutoff) {
			continue
		}
		if !dryRun {
			if err := os.RemoveAll(ws.Path); err != nil {
				result.Errors = append(result.Errors, CleanupError{Path: ws.Path, Error: err.Error()})
				logging.WarnWithContext(logger, "failed to remove stale workspace", "workspace_cleanup_failed",
					logging.String("path", ws.Path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check work_dir permissions"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
				continue
			}
			logger.Info("removed stale workspace",
				logging.String("path", ws.Path),
				logging.Size("size", ws.SizeBytes),
				logging.String(logging.FieldEventType, "workspace_cleanup"),
			)
		}
		result.Removed = append(result.Removed, ws)
	}
	return result
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
