package organizer

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNextAvailableReturnsFreeNameUnchanged(t *testing.T) {
	dir := t.TempDir()

	name, err := NextAvailable(dir, "invoice.pdf")
	if err != nil {
		t.Fatalf("NextAvailable() error = %v", err)
	}
	if name != "invoice.pdf" {
		t.Fatalf("NextAvailable() = %q, want %q", name, "invoice.pdf")
	}
}

func TestNextAvailableAppendsCounter(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "invoice.pdf"))

	name, err := NextAvailable(dir, "invoice.pdf")
	if err != nil {
		t.Fatalf("NextAvailable() error = %v", err)
	}
	if name != "invoice_1.pdf" {
		t.Fatalf("NextAvailable() = %q, want %q", name, "invoice_1.pdf")
	}
}

func TestNextAvailableSkipsTakenCounters(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "invoice.pdf"))
	touch(t, filepath.Join(dir, "invoice_1.pdf"))

	name, err := NextAvailable(dir, "invoice.pdf")
	if err != nil {
		t.Fatalf("NextAvailable() error = %v", err)
	}
	if name != "invoice_2.pdf" {
		t.Fatalf("NextAvailable() = %q, want %q", name, "invoice_2.pdf")
	}
}

func TestNextAvailableKeepsExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "statement.2024.pdf"))

	name, err := NextAvailable(dir, "statement.2024.pdf")
	if err != nil {
		t.Fatalf("NextAvailable() error = %v", err)
	}
	if name != "statement.2024_1.pdf" {
		t.Fatalf("NextAvailable() = %q, want %q", name, "statement.2024_1.pdf")
	}
}

func TestRenamerFuncAdapter(t *testing.T) {
	r := RenamerFunc(func(destDir, filename string) (string, error) {
		return filepath.Join("seen", destDir, filename), nil
	})

	got, err := r.Rename("out", "a.pdf")
	if err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if want := filepath.Join("seen", "out", "a.pdf"); got != want {
		t.Fatalf("Rename() = %q, want %q", got, want)
	}
}
