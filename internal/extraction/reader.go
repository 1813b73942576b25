package extraction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ReadFirstPageText extracts the plain text of the document's first page,
// preserving line structure so line-anchored patterns and the letterhead
// heuristics work. Invoices carry their identifying fields on page one, so
// later pages are never read.
//
// Image-only and empty documents return an error; callers park those items in
// review rather than filing an unidentified invoice.
func ReadFirstPageText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	defer file.Close()

	if reader.NumPage() < 1 {
		return "", errors.New("document has no pages")
	}
	page := reader.Page(1)
	if page.V.IsNull() {
		return "", errors.New("first page has no content")
	}

	text, err := pageText(page)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no text content on first page")
	}
	return text, nil
}

// pageText reassembles the page as newline-separated rows. Row extraction
// keeps the visual line breaks that GetPlainText collapses; when row layout
// is unavailable the collapsed text is still better than nothing.
func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil || len(rows) == 0 {
		plain, plainErr := page.GetPlainText(nil)
		if plainErr != nil {
			if err != nil {
				return "", err
			}
			return "", plainErr
		}
		return plain, nil
	}

	var builder strings.Builder
	for _, row := range rows {
		words := make([]string, 0, len(row.Content))
		for _, word := range row.Content {
			if trimmed := strings.TrimSpace(word.S); trimmed != "" {
				words = append(words, trimmed)
			}
		}
		builder.WriteString(strings.Join(words, " "))
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
