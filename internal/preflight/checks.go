package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"clipper/internal/tools"
)

// CheckTool verifies that binary runs with versionArgs.
func CheckTool(ctx context.Context, gateway *tools.Gateway, name, binary string, versionArgs ...string) Result {
	if strings.TrimSpace(binary) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	res := gateway.Run(ctx, binary, versionArgs...)
	if !res.ExitSucceeded {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s)", binary, firstLine(res.Stderr, "not runnable"))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", binary, firstLine(res.Stdout, "ok"))}
}

// CheckDownloader verifies the configured downloader, then the copy a
// previous bootstrap placed in the binary directory. A missing downloader is
// optional because acquisition bootstraps it or degrades to metadata only.
func CheckDownloader(ctx context.Context, gateway *tools.Gateway, configured, bootstrapped string) Result {
	const name = "Downloader"
	if result := CheckTool(ctx, gateway, name, configured, "--version"); result.Passed {
		return result
	}
	if bootstrapped != "" && bootstrapped != configured {
		if result := CheckTool(ctx, gateway, name, bootstrapped, "--version"); result.Passed {
			return result
		}
	}
	return Result{
		Name:     name,
		Optional: true,
		Detail:   fmt.Sprintf("%s not found (bootstrapped on first acquire)", configured),
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func firstLine(text, fallback string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = strings.TrimSpace(text[:idx])
	}
	if text == "" {
		return fallback
	}
	return text
}
