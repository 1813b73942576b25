package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/billfold/billfold/internal/config"
)

const userAgent = "Billfold/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyInvoiceDetected(ctx context.Context, filename string) error
	NotifyFiled(ctx context.Context, company, finalFile string) error
	NotifyReviewRequired(ctx context.Context, filename, reason string) error
	NotifyOrganizeCompleted(ctx context.Context, copied, failed int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
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
		enabled: toggles{
			detected: cfg.Notifications.Detected,
			filed:    cfg.Notifications.Filed,
			review:   cfg.Notifications.Review,
			organize: cfg.Notifications.Organize,
			errors:   cfg.Notifications.Errors,
		},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type toggles struct {
	detected bool
	filed    bool
	review   bool
	organize bool
	errors   bool
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  toggles
}

func (n *ntfyService) NotifyInvoiceDetected(ctx context.Context, filename string) error {
	if !n.enabled.detected {
		return nil
	}
	filename = strings.TrimSpace(filename)
	data := payload{
		title:   "Billfold - Invoice Detected",
		message: fmt.Sprintf("📄 New invoice detected: %s", filename),
		tags:    []string{"billfold", "inbox", "detected"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFiled(ctx context.Context, company, finalFile string) error {
	if !n.enabled.filed {
		return nil
	}
	company = strings.TrimSpace(company)
	finalFile = strings.TrimSpace(finalFile)
	if company == "" {
		company = "unknown company"
	}
	message := fmt.Sprintf("✅ Filed invoice for %s", company)
	if finalFile != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, finalFile)
	}
	data := payload{
		title:   "Billfold - Invoice Filed",
		message: message,
		tags:    []string{"billfold", "filed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyReviewRequired(ctx context.Context, filename, reason string) error {
	if !n.enabled.review {
		return nil
	}
	filename = strings.TrimSpace(filename)
	message := fmt.Sprintf("Could not identify: %s\nManual review required", filename)
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("Could not identify: %s\nReason: %s\nManual review required", filename, reason)
	}
	data := payload{
		title:   "Billfold - Review Required",
		message: message,
		tags:    []string{"billfold", "review"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyOrganizeCompleted(ctx context.Context, copied, failed int, duration time.Duration) error {
	if !n.enabled.organize {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title, message string
	if failed == 0 {
		title = "Billfold - Organize Complete"
		message = fmt.Sprintf("Organize complete: %d files copied in %s", copied, durationText)
	} else {
		title = "Billfold - Organize Complete (with errors)"
		message = fmt.Sprintf("Organize complete: %d copied, %d failed in %s", copied, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"billfold", "organize", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.enabled.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Billfold - Error",
		message:  builder.String(),
		tags:     []string{"billfold", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Billfold - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"billfold", "test"},
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

func (noopService) NotifyInvoiceDetected(context.Context, string) error { return nil }
func (noopService) NotifyFiled(context.Context, string, string) error  { return nil }
func (noopService) NotifyReviewRequired(context.Context, string, string) error {
	return nil
}
func (noopService) NotifyOrganizeCompleted(context.Context, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
