package extraction

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ValidateFile checks that path names a readable invoice PDF. The file must
// exist, be a regular file carrying a .pdf extension, be non-empty, fit under
// maxBytes (ignored when <= 0), and survive a structural parse.
func ValidateFile(path string, maxBytes int64) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path cannot be empty")
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), maxBytes)
	}

	return probeStructure(path)
}

// probeStructure parses the document with relaxed validation so invoices from
// sloppy generators still pass, while truncated or non-PDF payloads fail.
func probeStructure(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return fmt.Errorf("invalid PDF file: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return fmt.Errorf("resolve page count: %w", err)
	}
	if ctx.PageCount < 1 {
		return fmt.Errorf("document has no pages: %s", path)
	}
	return nil
}

// IsValidPDF reports whether path passes validation under maxBytes.
func IsValidPDF(path string, maxBytes int64) bool {
	return ValidateFile(path, maxBytes) == nil
}
