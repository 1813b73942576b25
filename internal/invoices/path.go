package invoices

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/billfold/billfold/internal/textutil"
)

const dateDirLayout = "2006-01-02"

// Document projects a queue item into the filing domain: the extracted
// fields, the on-disk paths, and the date used when no invoice date parsed.
type Document struct {
	Fields       Fields
	SourcePath   string
	StagedPath   string
	FallbackDate time.Time
}

// LibraryPath computes the destination for the document inside the library
// rooted at base, falling back to the source basename when the invoice
// number is missing.
func (d Document) LibraryPath(base string) string {
	fallbackName := strings.TrimSpace(filepath.Base(d.SourcePath))
	fallbackName = strings.TrimSuffix(fallbackName, filepath.Ext(fallbackName))
	return libraryPath(base, d.Fields, d.FallbackDate, fallbackName)
}

// LibraryPath computes <base>/<company>/<YYYY-MM-DD>/<invoice>[-<amount>].pdf
// for the given fields. The company directory is the canonical filesystem-safe
// company key; the date directory prefers the extracted invoice date and falls
// back to fallbackDate (typically the source file's modification time).
func LibraryPath(base string, f Fields, fallbackDate time.Time) string {
	return libraryPath(base, f, fallbackDate, "invoice")
}

func libraryPath(base string, f Fields, fallbackDate time.Time, fallbackName string) string {
	companyDir := textutil.SanitizeToken(textutil.CanonicalKey(f.Company))

	dateDir := strings.TrimSpace(f.InvoiceDate)
	if _, err := time.Parse(dateDirLayout, dateDir); err != nil {
		if fallbackDate.IsZero() {
			fallbackDate = time.Now()
		}
		dateDir = fallbackDate.Format(dateDirLayout)
	}

	name := fileSegment(f.InvoiceNumber)
	if name == "" {
		name = fileSegment(fallbackName)
	}
	if name == "" {
		name = "invoice"
	}
	if amount := fileSegment(f.Amount); amount != "" {
		name += "-" + amount
	}

	return filepath.Join(base, companyDir, dateDir, name+".pdf")
}

// fileSegment sanitizes a value for use as a filename component: unsafe
// characters removed, interior spaces collapsed to underscores.
func fileSegment(value string) string {
	value = textutil.SanitizeFileName(value)
	if value == "" {
		return ""
	}
	value = strings.Join(strings.Fields(value), "_")
	return strings.Trim(value, "._-")
}
