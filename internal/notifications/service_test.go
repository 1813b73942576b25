package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyFiled(context.Background(), "Acme Consulting", "acme/2024-03-15/INV-1.pdf"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "invoice detected",
			notify: func(svc notifications.Service) error {
				return svc.NotifyInvoiceDetected(context.Background(), "inv-march.pdf")
			},
			expectTitle:   "Billfold - Invoice Detected",
			expectMessage: "📄 New invoice detected: inv-march.pdf",
			expectTags:    "billfold,inbox,detected",
		},
		{
			name: "filed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyFiled(context.Background(), "Acme Consulting", "acme_consulting/2024-03-15/INV-1.pdf")
			},
			expectTitle:   "Billfold - Invoice Filed",
			expectMessage: "✅ Filed invoice for Acme Consulting\nFile: acme_consulting/2024-03-15/INV-1.pdf",
			expectTags:    "billfold,filed",
		},
		{
			name: "review required",
			notify: func(svc notifications.Service) error {
				return svc.NotifyReviewRequired(context.Background(), "scan001.pdf", "missing company, invoice number")
			},
			expectTitle:   "Billfold - Review Required",
			expectMessage: "Could not identify: scan001.pdf\nReason: missing company, invoice number\nManual review required",
			expectTags:    "billfold,review",
		},
		{
			name: "organize completed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyOrganizeCompleted(context.Background(), 4, 0, 90*time.Second)
			},
			expectTitle:   "Billfold - Organize Complete",
			expectMessage: "Organize complete: 4 files copied in 1m30s",
			expectTags:    "billfold,organize,completed",
		},
		{
			name: "organize completed with failures",
			notify: func(svc notifications.Service) error {
				return svc.NotifyOrganizeCompleted(context.Background(), 3, 2, 0)
			},
			expectTitle:   "Billfold - Organize Complete (with errors)",
			expectMessage: "Organize complete: 3 copied, 2 failed in 0s",
			expectTags:    "billfold,organize,completed",
		},
		{
			name: "error",
			notify: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("disk full"), "filing")
			},
			expectTitle:    "Billfold - Error",
			expectMessage:  "❌ Error with filing: disk full",
			expectTags:     "billfold,error,alert",
			expectPriority: "high",
		},
		{
			name: "test notification",
			notify: func(svc notifications.Service) error {
				return svc.TestNotification(context.Background())
			},
			expectTitle:    "Billfold - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "billfold,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceSuppressesDisabledKinds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed notification: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Detected = false
	cfg.Notifications.Filed = false
	cfg.Notifications.Review = false
	cfg.Notifications.Organize = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	ctx := context.Background()

	if err := svc.NotifyInvoiceDetected(ctx, "a.pdf"); err != nil {
		t.Fatalf("suppressed detected notification returned error: %v", err)
	}
	if err := svc.NotifyFiled(ctx, "Acme", ""); err != nil {
		t.Fatalf("suppressed filed notification returned error: %v", err)
	}
	if err := svc.NotifyReviewRequired(ctx, "a.pdf", "missing company"); err != nil {
		t.Fatalf("suppressed review notification returned error: %v", err)
	}
	if err := svc.NotifyOrganizeCompleted(ctx, 1, 0, time.Second); err != nil {
		t.Fatalf("suppressed organize notification returned error: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("boom"), "test"); err != nil {
		t.Fatalf("suppressed error notification returned error: %v", err)
	}
}

func TestNtfyServiceReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
