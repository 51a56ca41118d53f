package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"clipper/internal/acquisition"
	"clipper/internal/config"
	"clipper/internal/history"
	"clipper/internal/logging"
	"clipper/internal/subtitles"
	"clipper/internal/tools"
	"clipper/internal/transform"
	"clipper/internal/voice"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool
	runFunc    tools.RunFunc

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	gatewayOnce sync.Once
	gateway     *tools.Gateway

	storeOnce sync.Once
	store     *history.Store
	storeErr  error

	startupOnce sync.Once
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger, _ = logging.NewFromConfig(nil)
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) toolGateway() *tools.Gateway {
	c.gatewayOnce.Do(func() {
		opts := []tools.Option{
			tools.WithTimeout(c.configValue().CommandTimeout()),
			tools.WithLogger(c.ensureLogger()),
		}
		if c.runFunc != nil {
			opts = append(opts, tools.WithRunFunc(c.runFunc))
		}
		c.gateway = tools.NewGateway(opts...)
	})
	return c.gateway
}

// historyStore opens the history database on first use. Commands that only
// record history keep working when it cannot be opened.
func (c *commandContext) historyStore() (*history.Store, error) {
	c.storeOnce.Do(func() {
		c.store, c.storeErr = history.Open(c.configValue())
		if c.storeErr != nil {
			logging.WarnWithContext(c.ensureLogger(), "history unavailable", "history_open_failed",
				logging.Error(c.storeErr),
				logging.String(logging.FieldErrorHint, "check that log_dir is writable"),
				logging.String(logging.FieldImpact, "operations are not recorded"),
			)
		}
	})
	return c.store, c.storeErr
}

func (c *commandContext) pipeline() *acquisition.Pipeline {
	var opts []acquisition.Option
	if store, err := c.historyStore(); err == nil {
		opts = append(opts, acquisition.WithRecorder(store))
	}
	return acquisition.NewPipeline(c.configValue(), c.toolGateway(), c.ensureLogger(), opts...)
}

func (c *commandContext) transformer() *transform.Service {
	var opts []transform.Option
	if store, err := c.historyStore(); err == nil {
		opts = append(opts, transform.WithRecorder(store))
	}
	return transform.NewService(c.configValue(), c.toolGateway(), c.ensureLogger(), opts...)
}

// subtitleService wires the platform caption strategy through a downloader
// that is only bootstrapped when the strategy actually runs.
func (c *commandContext) subtitleService(pipeline *acquisition.Pipeline) *subtitles.Service {
	cfg := c.configValue()
	fetcher := &lazyCaptions{pipeline: pipeline, language: cfg.Acquisition.SubtitleLanguage}
	return subtitles.NewService(cfg, c.toolGateway(), c.ensureLogger(), subtitles.WithCaptionFetcher(fetcher))
}

func (c *commandContext) voiceService() *voice.Service {
	return voice.NewService(c.configValue(), c.toolGateway(), c.ensureLogger())
}

// startup runs once per process after configuration loads.
func (c *commandContext) startup() {
	c.startupOnce.Do(func() {
		c.voiceService().Cleanup(time.Now())
	})
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
}

// lazyCaptions satisfies subtitles.CaptionFetcher, resolving the downloader
// on first use.
type lazyCaptions struct {
	pipeline *acquisition.Pipeline
	language string
}

func (l *lazyCaptions) FetchAutoCaptions(ctx context.Context, videoID, outputBase string) tools.Result {
	client, err := l.pipeline.Downloader(ctx)
	if err != nil {
		return tools.Result{Stderr: err.Error()}
	}
	return client.FetchAutoCaptions(ctx, videoID, outputBase)
}

func (l *lazyCaptions) CaptionLanguage() string {
	return l.language
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
