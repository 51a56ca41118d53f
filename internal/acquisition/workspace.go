package acquisition

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"clipper/internal/services"
)

const (
	workspacePrefix      = "youtube_"
	maxWorkspaceAttempts = 100
)

// createWorkspace makes a new directory under root named from now. A name
// that already exists gets a numeric suffix, so a directory is never reused.
func createWorkspace(root string, now time.Time) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", services.Wrap(services.ErrWorkspace, "acquisition", "workspace", "Create work directory root", err)
	}
	base := filepath.Join(root, fmt.Sprintf("%s%d", workspacePrefix, now.UnixMilli()))
	candidate := base
	for attempt := 1; attempt <= maxWorkspaceAttempts; attempt++ {
		err := os.Mkdir(candidate, 0o755)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", services.Wrap(services.ErrWorkspace, "acquisition", "workspace", "Create working directory", err)
		}
		candidate = fmt.Sprintf("%s_%d", base, attempt)
	}
	return "", services.Wrap(services.ErrWorkspace, "acquisition", "workspace",
		fmt.Sprintf("No free working directory name after %d attempts", maxWorkspaceAttempts), nil)
}
