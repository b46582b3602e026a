package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Farman-RT/QuickSaver/internal/config"
)

const userAgent = "QuickSaver/1.0"

// Service defines the alerts QuickSaver publishes.
type Service interface {
	NotifyServerStarted(ctx context.Context, address string) error
	NotifyFetchFailed(ctx context.Context, url, reason, detail string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether cfg routes notifications anywhere.
func Enabled(cfg *config.Config) bool {
	return cfg != nil && strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyServerStarted(ctx context.Context, address string) error {
	return n.send(ctx, payload{
		title:    "QuickSaver - Started",
		message:  fmt.Sprintf("Listening on %s", strings.TrimSpace(address)),
		tags:     []string{"quicksaver", "server", "started"},
		priority: "low",
	})
}

func (n *ntfyService) NotifyFetchFailed(ctx context.Context, url, reason, detail string) error {
	var builder strings.Builder
	builder.WriteString("Fetch failed")
	if reason = strings.TrimSpace(reason); reason != "" {
		builder.WriteString(" (")
		builder.WriteString(reason)
		builder.WriteString(")")
	}
	builder.WriteString(": ")
	builder.WriteString(strings.TrimSpace(url))
	if detail = strings.TrimSpace(detail); detail != "" {
		builder.WriteString("\n")
		builder.WriteString(detail)
	}
	return n.send(ctx, payload{
		title:    "QuickSaver - Fetch Failed",
		message:  builder.String(),
		tags:     []string{"quicksaver", "fetch", "failed"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "QuickSaver - Test",
		message:  "Notification system test",
		tags:     []string{"quicksaver", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
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

func (noopService) NotifyServerStarted(context.Context, string) error               { return nil }
func (noopService) NotifyFetchFailed(context.Context, string, string, string) error { return nil }
func (noopService) TestNotification(context.Context) error                          { return nil }
