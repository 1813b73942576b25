package invoices

import (
	"strings"

	"github.com/billfold/billfold/internal/queue"
)

// Fields holds the identifying values extracted from an invoice document.
// Empty strings mean the value was not found.
type Fields struct {
	Company       string
	InvoiceNumber string
	GSTNumber     string
	Amount        string
	InvoiceDate   string
}

// FromItem reads the extraction columns persisted on a queue item.
func FromItem(item *queue.Item) Fields {
	if item == nil {
		return Fields{}
	}
	return Fields{
		Company:       strings.TrimSpace(item.CompanyName),
		InvoiceNumber: strings.TrimSpace(item.InvoiceNumber),
		GSTNumber:     strings.TrimSpace(item.GSTNumber),
		Amount:        strings.TrimSpace(item.Amount),
		InvoiceDate:   strings.TrimSpace(item.InvoiceDate),
	}
}

// WriteToItem persists the fields onto the queue item's extraction columns.
func (f Fields) WriteToItem(item *queue.Item) {
	if item == nil {
		return
	}
	item.CompanyName = strings.TrimSpace(f.Company)
	item.InvoiceNumber = strings.TrimSpace(f.InvoiceNumber)
	item.GSTNumber = strings.TrimSpace(f.GSTNumber)
	item.Amount = strings.TrimSpace(f.Amount)
	item.InvoiceDate = strings.TrimSpace(f.InvoiceDate)
}

// Complete reports whether the document carries enough identity to be filed.
// A company or an invoice number is enough; both missing routes to review.
func (f Fields) Complete() bool {
	return strings.TrimSpace(f.Company) != "" || strings.TrimSpace(f.InvoiceNumber) != ""
}

// Missing lists the identity fields that were not extracted, for review
// reasons and operator-facing messages.
func (f Fields) Missing() []string {
	var missing []string
	if strings.TrimSpace(f.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(f.InvoiceNumber) == "" {
		missing = append(missing, "invoice number")
	}
	return missing
}
