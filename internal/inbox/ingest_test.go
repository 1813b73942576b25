package inbox_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/billfold/billfold/internal/inbox"
	"github.com/billfold/billfold/internal/logging"
	"github.com/billfold/billfold/internal/queue"
	"github.com/billfold/billfold/internal/services"
	"github.com/billfold/billfold/internal/testsupport"
)

type ingestorHarness struct {
	pollerHarness
	ingestor *inbox.Ingestor
}

func newIngestorHarness(t *testing.T) *ingestorHarness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &stubNotifier{}
	return &ingestorHarness{
		pollerHarness: pollerHarness{cfg: cfg, store: store, notifier: notifier},
		ingestor:      inbox.NewIngestorWithDependencies(cfg, store, logging.NewNop(), notifier),
	}
}

func TestIngestCreatesQueueItem(t *testing.T) {
	h := newIngestorHarness(t)
	source := filepath.Join(testsupport.BaseDir(h.cfg), "receipt.pdf")
	if err := os.WriteFile(source, []byte("manual add"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	item, created, err := h.ingestor.Ingest(context.Background(), source)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if !created {
		t.Fatal("created = false, want true for a new document")
	}
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
	if string(data) != "manual add" {
		t.Fatalf("staged content = %q, want the source bytes", data)
	}
	if h.notifier.detectedCalls != 1 || h.notifier.detectedFile != "receipt.pdf" {
		t.Fatalf("detected notification = %+v, want one call for receipt.pdf", h.notifier)
	}
}

func TestIngestReturnsExistingItemForDuplicateContent(t *testing.T) {
	h := newIngestorHarness(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "first.pdf")
	second := filepath.Join(dir, "second.pdf")
	for _, path := range []string{first, second} {
		if err := os.WriteFile(path, []byte("identical bytes"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	original, created, err := h.ingestor.Ingest(context.Background(), first)
	if err != nil || !created {
		t.Fatalf("first Ingest() = (created=%v, err=%v), want a new item", created, err)
	}

	duplicate, created, err := h.ingestor.Ingest(context.Background(), second)
	if err != nil {
		t.Fatalf("second Ingest() error = %v", err)
	}
	if created {
		t.Fatal("created = true for duplicate content, want the existing item back")
	}
	if duplicate.ID != original.ID {
		t.Fatalf("duplicate ID = %d, want %d", duplicate.ID, original.ID)
	}
	if h.notifier.detectedCalls != 1 {
		t.Fatalf("detectedCalls = %d, want 1: duplicates must not re-notify", h.notifier.detectedCalls)
	}

	entries, err := os.ReadDir(h.cfg.Paths.StagingDir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("staging dir holds %d files, want 1", len(entries))
	}
}

func TestIngestRejectsInvalidSources(t *testing.T) {
	h := newIngestorHarness(t)
	dir := t.TempDir()

	notPDF := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notPDF, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	asDir := filepath.Join(dir, "folder.pdf")
	if err := os.Mkdir(asDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cases := []struct {
		name string
		path string
	}{
		{"empty path", "   "},
		{"missing file", filepath.Join(dir, "ghost.pdf")},
		{"wrong extension", notPDF},
		{"directory", asDir},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := h.ingestor.Ingest(context.Background(), tc.path)
			if err == nil {
				t.Fatal("Ingest() error = nil, want a validation error")
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("Ingest() error = %v, want services.ErrValidation", err)
			}
		})
	}

	items, err := h.store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("queue holds %d items after rejected ingests, want 0", len(items))
	}
}
