package extraction_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/extraction"
	"github.com/billfold/billfold/internal/logging"
	"github.com/billfold/billfold/internal/notifications"
	"github.com/billfold/billfold/internal/queue"
	"github.com/billfold/billfold/internal/services"
	"github.com/billfold/billfold/internal/testsupport"
)

type stubNotifier struct {
	reviewCalls  int
	reviewFile   string
	reviewReason string
}

func (s *stubNotifier) NotifyInvoiceDetected(context.Context, string) error { return nil }

func (s *stubNotifier) NotifyFiled(context.Context, string, string) error { return nil }

func (s *stubNotifier) NotifyReviewRequired(_ context.Context, filename, reason string) error {
	s.reviewCalls++
	s.reviewFile = filename
	s.reviewReason = reason
	return nil
}

func (s *stubNotifier) NotifyOrganizeCompleted(context.Context, int, int, time.Duration) error {
	return nil
}

func (s *stubNotifier) NotifyError(context.Context, error, string) error { return nil }

func (s *stubNotifier) TestNotification(context.Context) error { return nil }

var _ notifications.Service = (*stubNotifier)(nil)

func newTestExtractor(t *testing.T, cfg *config.Config, store *queue.Store, notifier notifications.Service) *extraction.Extractor {
	t.Helper()
	extractor, err := extraction.NewExtractor(cfg, store, logging.NewNop(), notifier)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	return extractor
}

func TestExtractorIdentifiesInvoice(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &stubNotifier{}
	extractor := newTestExtractor(t, cfg, store, notifier)

	staged := filepath.Join(cfg.Paths.StagingDir, "invoice.pdf")
	testsupport.WritePDF(t, staged,
		"Acme Industries Pvt Ltd",
		"GSTIN: 29AABCU9603R1ZM",
		"Invoice Number: INV-2024-0042",
		"Invoice Date: 15/04/2024",
		"Total Amount: Rs. 12,500.50",
	)
	item := testsupport.NewInvoice(t, store, "/inbox/invoice.pdf", staged, "fp-extract-1")
	item.Status = queue.StatusExtracting

	ctx := context.Background()
	if err := extractor.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if item.ProgressStage != "Extracting" {
		t.Errorf("progress stage = %q, want Extracting after Prepare", item.ProgressStage)
	}
	if err := extractor.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.CompanyName != "Acme Industries Pvt Ltd" {
		t.Errorf("company = %q, want Acme Industries Pvt Ltd", item.CompanyName)
	}
	if item.InvoiceNumber != "INV-2024-0042" {
		t.Errorf("invoice number = %q, want INV-2024-0042", item.InvoiceNumber)
	}
	if item.GSTNumber != "29AABCU9603R1ZM" {
		t.Errorf("gst number = %q, want 29AABCU9603R1ZM", item.GSTNumber)
	}
	if item.Amount != "12500.50" {
		t.Errorf("amount = %q, want 12500.50", item.Amount)
	}
	if item.InvoiceDate != "2024-04-15" {
		t.Errorf("invoice date = %q, want 2024-04-15", item.InvoiceDate)
	}
	if item.Status != queue.StatusExtracting {
		t.Errorf("status = %s, want extracting left for the workflow manager", item.Status)
	}
	if item.NeedsReview {
		t.Error("identified invoice should not be flagged for review")
	}
	if item.ProgressStage != "Extracted" {
		t.Errorf("progress stage = %q, want Extracted", item.ProgressStage)
	}
	if item.ProgressPercent != 100 {
		t.Errorf("progress percent = %v, want 100", item.ProgressPercent)
	}
	if notifier.reviewCalls != 0 {
		t.Errorf("review notifications = %d, want 0", notifier.reviewCalls)
	}
}

func TestExtractorRoutesUnidentifiedInvoiceToReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &stubNotifier{}
	extractor := newTestExtractor(t, cfg, store, notifier)

	staged := filepath.Join(cfg.Paths.StagingDir, "receipt.pdf")
	testsupport.WritePDF(t, staged,
		"RECEIPT",
		"Thank you for your purchase",
		"Total: 450.00",
	)
	item := testsupport.NewInvoice(t, store, "/inbox/receipt.pdf", staged, "fp-extract-2")
	item.Status = queue.StatusExtracting

	ctx := context.Background()
	if err := extractor.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := extractor.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.Status != queue.StatusReview {
		t.Fatalf("status = %s, want review", item.Status)
	}
	if !item.NeedsReview {
		t.Error("expected the review flag to be set")
	}
	if item.ReviewReason != "Missing company and invoice number" {
		t.Errorf("review reason = %q, want Missing company and invoice number", item.ReviewReason)
	}
	if item.ProgressStage != "Review" {
		t.Errorf("progress stage = %q, want Review", item.ProgressStage)
	}
	if notifier.reviewCalls != 1 {
		t.Fatalf("review notifications = %d, want 1", notifier.reviewCalls)
	}
	if notifier.reviewFile != "receipt.pdf" {
		t.Errorf("notified file = %q, want receipt.pdf", notifier.reviewFile)
	}
	if notifier.reviewReason != item.ReviewReason {
		t.Errorf("notified reason = %q, want %q", notifier.reviewReason, item.ReviewReason)
	}
}

func TestExtractorFailsValidationForUnreadableFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	extractor := newTestExtractor(t, cfg, store, &stubNotifier{})

	staged := filepath.Join(cfg.Paths.StagingDir, "broken.pdf")
	testsupport.WriteFile(t, staged, 512)
	item := testsupport.NewInvoice(t, store, "/inbox/broken.pdf", staged, "fp-extract-3")
	item.Status = queue.StatusExtracting

	err := extractor.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Errorf("error = %v, want services.ErrValidation", err)
	}
	if got := services.FailureStatus(err); got != queue.StatusReview {
		t.Errorf("failure status = %s, want review", got)
	}
}

func TestExtractorRejectsBadPatternConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	cfg.Extraction.Patterns = map[string][]string{
		"po_number": {`PO\s*(\d+)`},
	}

	_, err := extraction.NewExtractor(cfg, store, logging.NewNop(), &stubNotifier{})
	if err == nil {
		t.Fatal("expected an error for an unknown pattern field")
	}
}

func TestExtractorHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	extractor := newTestExtractor(t, cfg, store, &stubNotifier{})

	health := extractor.HealthCheck(context.Background())
	if !health.Ready {
		t.Errorf("health = %+v, want ready", health)
	}

	cfg.Paths.StagingDir = ""
	health = extractor.HealthCheck(context.Background())
	if health.Ready {
		t.Error("expected unhealthy without a staging directory")
	}
	if health.Detail != "staging directory not configured" {
		t.Errorf("detail = %q, want staging directory not configured", health.Detail)
	}
}
