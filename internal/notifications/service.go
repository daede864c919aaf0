package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"proxymill/internal/config"
)

const userAgent = "proxymill/0.1.0"

// RunReport carries the figures published when a run finishes.
type RunReport struct {
	RunID      string
	Passes     []string
	Copied     int
	Unrendered []string
	Duration   time.Duration
}

// Service defines the notification surface used by the pipeline.
type Service interface {
	NotifyRunStarted(ctx context.Context, passes []string, cards int) error
	NotifyRunCompleted(ctx context.Context, report RunReport) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
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

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		notifyOnStart: cfg.Notifications.NotifyOnStart,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint      string
	client        *http.Client
	notifyOnStart bool
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, passes []string, cards int) error {
	if !n.notifyOnStart {
		return nil
	}
	return n.send(ctx, payload{
		title:   "proxymill - Run Started",
		message: fmt.Sprintf("Rendering %d card face(s) across %s", cards, joinPasses(passes)),
		tags:    []string{"proxymill", "run", "started"},
	})
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, report RunReport) error {
	duration := report.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	if len(report.Unrendered) == 0 {
		return n.send(ctx, payload{
			title:   "proxymill - Run Complete",
			message: fmt.Sprintf("%d proxy image(s) copied (%s) in %s", report.Copied, joinPasses(report.Passes), duration),
			tags:    []string{"proxymill", "run", "completed"},
		})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d proxy image(s) copied, %d card(s) without a proxy in %s", report.Copied, len(report.Unrendered), duration)
	const maxListed = 10
	for i, name := range report.Unrendered {
		if i == maxListed {
			fmt.Fprintf(&sb, "\n… and %d more", len(report.Unrendered)-maxListed)
			break
		}
		sb.WriteString("\n- ")
		sb.WriteString(name)
	}
	return n.send(ctx, payload{
		title:    "proxymill - Run Incomplete",
		message:  sb.String(),
		tags:     []string{"proxymill", "run", "incomplete"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" during ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	return n.send(ctx, payload{
		title:    "proxymill - Error",
		message:  builder.String(),
		tags:     []string{"proxymill", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "proxymill - Test",
		message:  "Notification system test",
		tags:     []string{"proxymill", "test"},
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

func joinPasses(passes []string) string {
	if len(passes) == 0 {
		return "no passes"
	}
	return strings.Join(passes, ", ")
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, []string, int) error { return nil }
func (noopService) NotifyRunCompleted(context.Context, RunReport) error   { return nil }
func (noopService) NotifyError(context.Context, error, string) error      { return nil }
func (noopService) TestNotification(context.Context) error                { return nil }
