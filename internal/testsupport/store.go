package testsupport

import (
	"context"
	"testing"

	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewInvoice creates a pending invoice item for tests using the provided store.
func NewInvoice(t testing.TB, store *queue.Store, sourcePath, stagedPath, fingerprint string) *queue.Item {
	t.Helper()

	item, err := store.NewInvoice(context.Background(), sourcePath, stagedPath, fingerprint)
	if err != nil {
		t.Fatalf("store.NewInvoice: %v", err)
	}
	return item
}
