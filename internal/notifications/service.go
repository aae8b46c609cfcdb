package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tapeshelf/internal/config"
)

const userAgent = "tapeshelf/0.1.0"

// ExportSummary is the part of an export report worth a push message.
type ExportSummary struct {
	Policy   string
	Pending  int
	Exported int
	Skipped  int
	Failed   int
	Elapsed  time.Duration
}

// Service defines the notification surface used by the CLI.
type Service interface {
	NotifyExportCompleted(ctx context.Context, summary ExportSummary) error
	NotifyExportFailed(ctx context.Context, policy string, err error) error
	NotifyCatalogSynced(ctx context.Context, entries int, outputPath string) error
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
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
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

func (n *ntfyService) NotifyExportCompleted(ctx context.Context, summary ExportSummary) error {
	elapsed := summary.Elapsed.Round(time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	policy := strings.TrimSpace(summary.Policy)
	if policy == "" {
		policy = "export"
	}

	data := payload{
		title: "tapeshelf - Export Complete",
		message: fmt.Sprintf("%s: %d exported, %d skipped of %d pending recordings in %s",
			policy, summary.Exported, summary.Skipped, summary.Pending, elapsed),
		tags: []string{"tapeshelf", policy, "completed"},
	}
	if summary.Failed > 0 {
		data.title = "tapeshelf - Export Complete (with errors)"
		data.message = fmt.Sprintf("%s: %d exported, %d skipped, %d failed in %s",
			policy, summary.Exported, summary.Skipped, summary.Failed, elapsed)
		data.tags = []string{"tapeshelf", policy, "errors"}
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyExportFailed(ctx context.Context, policy string, err error) error {
	var builder strings.Builder
	builder.WriteString("Export")
	if policy = strings.TrimSpace(policy); policy != "" {
		builder.WriteString(" (")
		builder.WriteString(policy)
		builder.WriteString(")")
	}
	builder.WriteString(" stopped: ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown error")
	}

	data := payload{
		title:    "tapeshelf - Export Failed",
		message:  builder.String(),
		tags:     []string{"tapeshelf", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCatalogSynced(ctx context.Context, entries int, outputPath string) error {
	message := fmt.Sprintf("Archive listing rebuilt with %d entries", entries)
	if outputPath = strings.TrimSpace(outputPath); outputPath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, outputPath)
	}
	data := payload{
		title:   "tapeshelf - Catalog Synced",
		message: message,
		tags:    []string{"tapeshelf", "catalog", "sync"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "tapeshelf - Test",
		message:  "Notification system test",
		tags:     []string{"tapeshelf", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
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

func (noopService) NotifyExportCompleted(context.Context, ExportSummary) error { return nil }
func (noopService) NotifyExportFailed(context.Context, string, error) error    { return nil }
func (noopService) NotifyCatalogSynced(context.Context, int, string) error     { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
