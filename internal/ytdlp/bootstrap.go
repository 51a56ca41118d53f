package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"clipper/internal/logging"
	"clipper/internal/services"
	"clipper/internal/tools"
)

const (
	lockFileName   = ".bootstrap.lock"
	lockRetryDelay = 250 * time.Millisecond
)

// BootstrapConfig describes where and how a missing downloader is obtained.
type BootstrapConfig struct {
	Binary         string
	BinDir         string
	PackageInstall bool
	PackageCommand []string
	ReleaseBaseURL string
}

// Bootstrapper makes the downloader invocable.
type Bootstrapper struct {
	cfg        BootstrapConfig
	gateway    *tools.Gateway
	httpClient *http.Client
	goos       string
	logger     *slog.Logger
}

// BootstrapOption customizes a Bootstrapper.
type BootstrapOption func(*Bootstrapper)

// WithHTTPClient overrides the client used for release downloads.
func WithHTTPClient(client *http.Client) BootstrapOption {
	return func(b *Bootstrapper) {
		if client != nil {
			b.httpClient = client
		}
	}
}

// WithGOOS overrides the platform used to pick the release asset.
func WithGOOS(goos string) BootstrapOption {
	return func(b *Bootstrapper) {
		if goos != "" {
			b.goos = goos
		}
	}
}

// NewBootstrapper constructs a Bootstrapper.
func NewBootstrapper(cfg BootstrapConfig, gateway *tools.Gateway, logger *slog.Logger, opts ...BootstrapOption) *Bootstrapper {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = "yt-dlp"
	}
	b := &Bootstrapper{
		cfg:        cfg,
		gateway:    gateway,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		goos:       runtime.GOOS,
		logger:     logging.NewComponentLogger(logger, "bootstrap"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// AssetName returns the release asset for goos.
func AssetName(goos string) string {
	if goos == "windows" {
		return "yt-dlp.exe"
	}
	return "yt-dlp"
}

// LocalBinary is where a downloaded release binary lives.
func (b *Bootstrapper) LocalBinary() string {
	if strings.TrimSpace(b.cfg.BinDir) == "" {
		return ""
	}
	return filepath.Join(b.cfg.BinDir, AssetName(b.goos))
}

// Ensure returns an invocable downloader path, installing or downloading it
// when necessary. It fails with services.ErrToolUnavailable once every
// fallback is exhausted.
func (b *Bootstrapper) Ensure(ctx context.Context) (string, error) {
	if path, ok := b.available(ctx); ok {
		return path, nil
	}
	logger := logging.WithContext(ctx, b.logger)
	logging.WarnWithContext(logger, "downloader not invocable; attempting bootstrap", "tool_missing",
		logging.String(logging.FieldTool, b.cfg.Binary),
		logging.String(logging.FieldImpact, "acquisition waits for install or release download"),
	)

	if strings.TrimSpace(b.cfg.BinDir) == "" {
		return "", services.Wrap(services.ErrToolUnavailable, "bootstrap", "ensure", "Downloader missing and no bin_dir configured", nil)
	}
	if err := os.MkdirAll(b.cfg.BinDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrToolUnavailable, "bootstrap", "ensure", "Create bin_dir", err)
	}
	lock := flock.New(filepath.Join(b.cfg.BinDir, lockFileName))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return "", services.Wrap(services.ErrToolUnavailable, "bootstrap", "lock", "Acquire bootstrap lock", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	// Another process may have finished while this one waited for the lock.
	if path, ok := b.available(ctx); ok {
		return path, nil
	}

	var failures []error
	if b.cfg.PackageInstall && len(b.cfg.PackageCommand) > 0 {
		if err := b.packageInstall(ctx); err != nil {
			failures = append(failures, err)
		} else if b.gateway.Probe(ctx, b.cfg.Binary, "--version") {
			logger.Info("downloader installed via package manager",
				logging.String(logging.FieldEventType, "tool_installed"),
				logging.String("command", strings.Join(b.cfg.PackageCommand, " ")),
			)
			return b.cfg.Binary, nil
		} else {
			failures = append(failures, errors.New("package install finished but downloader is still not on PATH"))
		}
	}

	path, err := b.downloadRelease(ctx)
	if err == nil {
		logger.Info("downloader release binary installed",
			logging.String(logging.FieldEventType, "tool_downloaded"),
			logging.String("path", path),
		)
		return path, nil
	}
	failures = append(failures, err)
	return "", services.Wrap(services.ErrToolUnavailable, "bootstrap", "ensure", "Downloader unavailable after all fallbacks", errors.Join(failures...))
}

func (b *Bootstrapper) available(ctx context.Context) (string, bool) {
	if b.gateway.Probe(ctx, b.cfg.Binary, "--version") {
		return b.cfg.Binary, true
	}
	if local := b.LocalBinary(); local != "" {
		if _, err := os.Stat(local); err == nil && b.gateway.Probe(ctx, local, "--version") {
			return local, true
		}
	}
	return "", false
}

func (b *Bootstrapper) packageInstall(ctx context.Context) error {
	command := b.cfg.PackageCommand
	result := b.gateway.Run(ctx, command[0], command[1:]...)
	if !result.ExitSucceeded {
		return fmt.Errorf("package install %q failed: %s", strings.Join(command, " "), tail(result.Stderr))
	}
	return nil
}

func (b *Bootstrapper) downloadRelease(ctx context.Context) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(b.cfg.ReleaseBaseURL), "/")
	if base == "" {
		return "", errors.New("release download disabled: no release_base_url")
	}
	url := base + "/" + AssetName(b.goos)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build release request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	target := b.LocalBinary()
	tmp, err := os.CreateTemp(b.cfg.BinDir, ".yt-dlp-*.partial")
	if err != nil {
		return "", fmt.Errorf("create temp binary: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write release binary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close release binary: %w", err)
	}
	if b.goos != "windows" {
		if err := os.Chmod(tmpPath, 0o755); err != nil {
			return "", fmt.Errorf("mark release binary executable: %w", err)
		}
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return "", fmt.Errorf("install release binary: %w", err)
	}
	if !b.gateway.Probe(ctx, target, "--version") {
		return "", fmt.Errorf("downloaded binary %s is not invocable", target)
	}
	return target, nil
}
