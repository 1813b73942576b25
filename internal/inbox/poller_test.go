package inbox_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/inbox"
	"github.com/billfold/billfold/internal/logging"
	"github.com/billfold/billfold/internal/notifications"
	"github.com/billfold/billfold/internal/queue"
	"github.com/billfold/billfold/internal/testsupport"
)

type stubNotifier struct {
	detectedCalls int
	detectedFile  string
}

func (s *stubNotifier) NotifyInvoiceDetected(_ context.Context, filename string) error {
	s.detectedCalls++
	s.detectedFile = filename
	return nil
}

func (s *stubNotifier) NotifyFiled(context.Context, string, string) error { return nil }

func (s *stubNotifier) NotifyReviewRequired(context.Context, string, string) error { return nil }

func (s *stubNotifier) NotifyOrganizeCompleted(context.Context, int, int, time.Duration) error {
	return nil
}

func (s *stubNotifier) NotifyError(context.Context, error, string) error { return nil }

func (s *stubNotifier) TestNotification(context.Context) error { return nil }

var _ notifications.Service = (*stubNotifier)(nil)

type pollerHarness struct {
	cfg      *config.Config
	store    *queue.Store
	notifier *stubNotifier
	poller   *inbox.Poller
}

func newPollerHarness(t *testing.T) *pollerHarness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &stubNotifier{}
	return &pollerHarness{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		poller:   inbox.NewPollerWithDependencies(cfg, store, logging.NewNop(), notifier),
	}
}

// dropPDF writes a settled inbox file: content in place, mtime older than any
// min-age gate.
func (h *pollerHarness) dropPDF(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.cfg.Paths.InboxDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	old := time.Now().Add(-time.Minute)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}
	return path
}

func TestScanOnceEnqueuesNewPDF(t *testing.T) {
	h := newPollerHarness(t)
	source := h.dropPDF(t, "invoice.pdf", "invoice content")

	added, err := h.poller.ScanOnce(context.Background())
	if err != nil {
		t.Fatalf("ScanOnce() error = %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}

	items, err := h.store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("queue holds %d items, want 1", len(items))
	}
	item := items[0]
	if item.SourcePath != source {
		t.Fatalf("SourcePath = %q, want %q", item.SourcePath, source)
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("Status = %q, want %q", item.Status, queue.StatusPending)
	}
	if filepath.Dir(item.StagedPath) != h.cfg.Paths.StagingDir {
		t.Fatalf("StagedPath = %q, want a file under %q", item.StagedPath, h.cfg.Paths.StagingDir)
	}
	data, err := os.ReadFile(item.StagedPath)
	if err != nil {
		t.Fatalf("read staged copy: %v", err)
	}
	if string(data) != "invoice content" {
		t.Fatalf("staged content = %q, want the inbox bytes", data)
	}
	if len(item.Fingerprint) != 64 {
		t.Fatalf("Fingerprint = %q, want a hex SHA-256", item.Fingerprint)
	}
	if h.notifier.detectedCalls != 1 || h.notifier.detectedFile != "invoice.pdf" {
		t.Fatalf("detected notification = %+v, want one call for invoice.pdf", h.notifier)
	}
}

func TestScanOnceWaitsForRecentFile(t *testing.T) {
	h := newPollerHarness(t)
	h.cfg.Workflow.InboxMinFileAge = 3600
	path := filepath.Join(h.cfg.Paths.InboxDir, "fresh.pdf")
	if err := os.WriteFile(path, []byte("still uploading"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	added, err := h.poller.ScanOnce(context.Background())
	if err != nil {
		t.Fatalf("ScanOnce() error = %v", err)
	}
	if added != 0 {
		t.Fatalf("added = %d, want 0 for a file younger than the min age", added)
	}

	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	added, err = h.poller.ScanOnce(context.Background())
	if err != nil {
		t.Fatalf("ScanOnce() error = %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1 once the file settled", added)
	}
}

func TestScanOnceDeduplicatesByContent(t *testing.T) {
	h := newPollerHarness(t)
	h.dropPDF(t, "invoice.pdf", "same bytes")
	// Same content under a different name must not enqueue twice.
	h.dropPDF(t, "invoice-copy.pdf", "same bytes")

	added, err := h.poller.ScanOnce(context.Background())
	if err != nil {
		t.Fatalf("ScanOnce() error = %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1: identical content is one document", added)
	}

	added, err = h.poller.ScanOnce(context.Background())
	if err != nil {
		t.Fatalf("second ScanOnce() error = %v", err)
	}
	if added != 0 {
		t.Fatalf("added = %d on re-sweep, want 0", added)
	}

	items, err := h.store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("queue holds %d items, want 1", len(items))
	}
}

func TestScanOnceIgnoresOtherEntries(t *testing.T) {
	h := newPollerHarness(t)
	if err := os.WriteFile(filepath.Join(h.cfg.Paths.InboxDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Mkdir(filepath.Join(h.cfg.Paths.InboxDir, "archive.pdf.d"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	added, err := h.poller.ScanOnce(context.Background())
	if err != nil {
		t.Fatalf("ScanOnce() error = %v", err)
	}
	if added != 0 {
		t.Fatalf("added = %d, want 0", added)
	}
}

func TestScanOnceAcceptsUppercaseExtension(t *testing.T) {
	h := newPollerHarness(t)
	h.dropPDF(t, "SCAN-0001.PDF", "scanned invoice")

	added, err := h.poller.ScanOnce(context.Background())
	if err != nil {
		t.Fatalf("ScanOnce() error = %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
}

func TestScanOnceReportsUnreadableInbox(t *testing.T) {
	h := newPollerHarness(t)
	h.cfg.Paths.InboxDir = filepath.Join(h.cfg.Paths.InboxDir, "gone")

	if _, err := h.poller.ScanOnce(context.Background()); err == nil {
		t.Fatal("ScanOnce() error = nil, want a sweep error for a missing inbox")
	}
}

func TestPollerStartGuards(t *testing.T) {
	h := newPollerHarness(t)
	ctx := context.Background()

	if err := h.poller.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := h.poller.Start(ctx); err == nil {
		t.Fatal("second Start() error = nil, want already-running guard")
	}
	h.poller.Stop()
	// Stop is idempotent.
	h.poller.Stop()

	if err := h.poller.Start(ctx); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	h.poller.Stop()
}
