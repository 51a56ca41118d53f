package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateBootstrap(); err != nil {
		return err
	}
	if err := c.validateAcquisition(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if !strings.Contains(c.Paths.APIBind, ":") {
		return fmt.Errorf("paths.api_bind must be host:port, got %q", c.Paths.APIBind)
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.CommandTimeoutSeconds < 0 {
		return errors.New("tools.command_timeout_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateBootstrap() error {
	if c.Bootstrap.PackageInstall && len(c.Bootstrap.PackageCommand) == 0 {
		return errors.New("bootstrap.package_command must be set when bootstrap.package_install is enabled")
	}
	if _, err := url.ParseRequestURI(c.Bootstrap.ReleaseBaseURL); err != nil {
		return fmt.Errorf("bootstrap.release_base_url: %w", err)
	}
	return nil
}

func (c *Config) validateAcquisition() error {
	if _, err := url.ParseRequestURI(c.Acquisition.OEmbedURL); err != nil {
		return fmt.Errorf("acquisition.oembed_url: %w", err)
	}
	if !strings.Contains(c.Acquisition.ThumbnailURLTemplate, "%s") {
		return errors.New("acquisition.thumbnail_url_template must contain %s for the video id")
	}
	if !strings.Contains(c.Acquisition.WatchURLTemplate, "%s") {
		return errors.New("acquisition.watch_url_template must contain %s for the video id")
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if c.Subtitles.CadenceSeconds > c.Subtitles.FallbackDurationSeconds {
		return fmt.Errorf("subtitles.cadence_seconds (%.2f) must not exceed subtitles.fallback_duration_seconds (%.2f)", c.Subtitles.CadenceSeconds, c.Subtitles.FallbackDurationSeconds)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.ParseRequestURI(c.Notifications.NtfyTopic)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be a full topic URL such as https://ntfy.sh/clipper, got %q", c.Notifications.NtfyTopic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
