package extraction_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/billfold/billfold/internal/extraction"
	"github.com/billfold/billfold/internal/testsupport"
)

func TestValidateFileAcceptsInvoicePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.pdf")
	testsupport.WritePDF(t, path, "Acme Industries Pvt Ltd", "Invoice Number: INV-1")

	if err := extraction.ValidateFile(path, 50*1024*1024); err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	// A size limit <= 0 disables the size check.
	if err := extraction.ValidateFile(path, 0); err != nil {
		t.Fatalf("ValidateFile without size limit: %v", err)
	}
}

func TestValidateFileRejections(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.pdf")
	testsupport.WritePDF(t, valid, "Invoice Number: INV-1")

	empty := filepath.Join(dir, "empty.pdf")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	notPDF := filepath.Join(dir, "notes.txt")
	testsupport.WriteFile(t, notPDF, 64)

	garbage := filepath.Join(dir, "garbage.pdf")
	testsupport.WriteFile(t, garbage, 1024)

	tests := []struct {
		name     string
		path     string
		maxBytes int64
		want     string
	}{
		{name: "empty path", path: "  ", maxBytes: 0, want: "path cannot be empty"},
		{name: "missing file", path: filepath.Join(dir, "missing.pdf"), maxBytes: 0, want: "does not exist"},
		{name: "directory", path: dir, maxBytes: 0, want: "directory"},
		{name: "wrong extension", path: notPDF, maxBytes: 0, want: "not a PDF"},
		{name: "empty file", path: empty, maxBytes: 0, want: "file is empty"},
		{name: "over size limit", path: valid, maxBytes: 16, want: "file too large"},
		{name: "unparseable payload", path: garbage, maxBytes: 0, want: "invalid PDF file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := extraction.ValidateFile(tt.path, tt.maxBytes)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestIsValidPDF(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.pdf")
	testsupport.WritePDF(t, valid, "Invoice Number: INV-1")
	garbage := filepath.Join(dir, "garbage.pdf")
	testsupport.WriteFile(t, garbage, 256)

	if !extraction.IsValidPDF(valid, 0) {
		t.Error("expected a real PDF to validate")
	}
	if extraction.IsValidPDF(garbage, 0) {
		t.Error("expected an unparseable payload to fail validation")
	}
}
