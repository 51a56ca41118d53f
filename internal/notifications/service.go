package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"clipper/internal/config"
)

const userAgent = "Clipper-Go/0.1.0"

// Event identifies a notification type.
type Event string

const (
	EventAcquisitionCompleted Event = "acquisition_completed"
	EventAcquisitionDegraded  Event = "acquisition_degraded"
	EventExportCompleted      Event = "export_completed"
	EventExportFailed         Event = "export_failed"
	EventTest                 Event = "test"
)

// Payload carries event-specific values keyed by name.
type Payload map[string]any

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: cfg.NotificationTimeout()},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventAcquisitionCompleted:
		body := fmt.Sprintf("📥 Downloaded: %s", payload.text("title", "untitled"))
		if assets := payload.text("assets", ""); assets != "" {
			body += "\nAssets: " + assets
		}
		return message{
			title: "Clipper - Downloaded",
			body:  body,
			tags:  []string{"clipper", "acquire", "completed"},
		}, true
	case EventAcquisitionDegraded:
		return message{
			title: "Clipper - Download Incomplete",
			body:  fmt.Sprintf("⚠️ %s: %s", payload.text("title", "untitled"), payload.text("warning", "some assets are missing")),
			tags:  []string{"clipper", "acquire", "warning"},
		}, true
	case EventExportCompleted:
		kind := payload.text("kind", "export")
		return message{
			title: "Clipper - Export Ready",
			body:  fmt.Sprintf("🎞️ %s ready: %s", kind, payload.text("output", "")),
			tags:  []string{"clipper", "export", kind},
		}, true
	case EventExportFailed:
		return message{
			title:    "Clipper - Export Failed",
			body:     fmt.Sprintf("❌ %s failed for %s: %s", payload.text("kind", "export"), payload.text("source", "unknown source"), payload.text("error", "unknown")),
			tags:     []string{"clipper", "export", "error"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Clipper - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"clipper", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (p Payload) text(key, fallback string) string {
	if p == nil {
		return fallback
	}
	value, ok := p[key]
	if !ok || value == nil {
		return fallback
	}
	text := strings.TrimSpace(fmt.Sprint(value))
	if text == "" {
		return fallback
	}
	return text
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
