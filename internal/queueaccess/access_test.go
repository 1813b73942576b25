package queueaccess_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/billfold/billfold/internal/ipc"
	"github.com/billfold/billfold/internal/queue"
	"github.com/billfold/billfold/internal/queueaccess"
	"github.com/billfold/billfold/internal/testsupport"
)

func TestStoreAccessQueueOperations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	pending := testsupport.NewInvoice(t, store, filepath.Join(cfg.Paths.InboxDir, "a.pdf"), "", "fp-a")
	failed := testsupport.NewInvoice(t, store, filepath.Join(cfg.Paths.InboxDir, "b.pdf"), "", "fp-b")
	failed.SetFailed("extraction pattern missing")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update failed item: %v", err)
	}

	access := queueaccess.NewStoreAccess(store)

	stats, err := access.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[string(queue.StatusPending)] != 1 || stats[string(queue.StatusFailed)] != 1 {
		t.Fatalf("unexpected stats: %#v", stats)
	}

	items, err := access.List(ctx, []string{string(queue.StatusFailed), "bogus"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].ID != failed.ID {
		t.Fatalf("expected failed item only, got %#v", items)
	}

	described, err := access.Describe(ctx, pending.ID)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if described == nil || described.ID != pending.ID {
		t.Fatalf("expected item %d, got %#v", pending.ID, described)
	}
	missing, err := access.Describe(ctx, 9999)
	if err != nil {
		t.Fatalf("Describe missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing item, got %#v", missing)
	}

	retried, err := access.RetryAll(ctx)
	if err != nil {
		t.Fatalf("RetryAll: %v", err)
	}
	if retried != 1 {
		t.Fatalf("expected 1 retried item, got %d", retried)
	}

	health, err := access.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != 2 || health.Pending != 2 {
		t.Fatalf("unexpected health: %#v", health)
	}

	dbHealth, err := access.DatabaseHealth(ctx)
	if err != nil {
		t.Fatalf("DatabaseHealth: %v", err)
	}
	if !dbHealth.DatabaseExists || !dbHealth.DatabaseReadable || !dbHealth.IntegrityCheck {
		t.Fatalf("unexpected database health: %#v", dbHealth)
	}
	if len(dbHealth.MissingColumns) != 0 {
		t.Fatalf("unexpected missing columns: %v", dbHealth.MissingColumns)
	}
	if dbHealth.TotalItems != 2 {
		t.Fatalf("expected 2 items in database, got %d", dbHealth.TotalItems)
	}

	removed, err := access.ClearAll(ctx)
	if err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 cleared items, got %d", removed)
	}
}

func TestStoreAccessReviewUpdate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewInvoice(t, store, filepath.Join(cfg.Paths.InboxDir, "scan.pdf"), "", "fp-review")
	item.SetReview("company name not extracted")
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update review item: %v", err)
	}

	access := queueaccess.NewStoreAccess(store)

	company := "Acme Pty Ltd"
	amount := "1234.56"
	updated, requeued, err := access.ReviewUpdate(ctx, ipc.ReviewUpdateRequest{
		ID:          item.ID,
		CompanyName: &company,
		Amount:      &amount,
		Requeue:     true,
	})
	if err != nil {
		t.Fatalf("ReviewUpdate: %v", err)
	}
	if updated == nil || !requeued {
		t.Fatalf("expected requeued item, got %#v requeued=%v", updated, requeued)
	}
	if updated.CompanyName != company || updated.Amount != amount {
		t.Fatalf("corrections not applied: %#v", updated)
	}
	if updated.Status != string(queue.StatusReadyToFile) {
		t.Fatalf("expected ready_to_file, got %s", updated.Status)
	}
	if updated.NeedsReview {
		t.Fatal("expected review flag cleared")
	}

	missing, requeued, err := access.ReviewUpdate(ctx, ipc.ReviewUpdateRequest{ID: 9999, Requeue: true})
	if err != nil {
		t.Fatalf("ReviewUpdate missing: %v", err)
	}
	if missing != nil || requeued {
		t.Fatalf("expected nil for missing item, got %#v", missing)
	}

	// Requeue is rejected once the item has left review.
	if _, _, err := access.ReviewUpdate(ctx, ipc.ReviewUpdateRequest{ID: item.ID, Requeue: true}); err == nil {
		t.Fatal("expected requeue of non-review item to fail")
	}
}

func TestOpenWithFallbackUsesStoreWhenDialFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	session, err := queueaccess.OpenWithFallback(nil, func() (*queue.Store, error) {
		return queue.Open(cfg)
	})
	if err != nil {
		t.Fatalf("OpenWithFallback: %v", err)
	}
	defer session.Close()

	stats, err := session.Access.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats via fallback store: %v", err)
	}
	if len(stats) != 0 {
		t.Fatalf("expected empty stats, got %#v", stats)
	}
}
