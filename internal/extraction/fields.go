package extraction

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/invoices"
	"github.com/billfold/billfold/internal/textutil"
)

// Field keys accepted in configuration pattern overrides. Each key selects an
// ordered pattern list; the first pattern that matches wins for that field.
const (
	FieldCompany       = "company_name"
	FieldGSTNumber     = "gst_number"
	FieldInvoiceNumber = "invoice_number"
	FieldAmount        = "amount"
	FieldInvoiceDate   = "invoice_date"
)

// companySimilarityThreshold gates the known-company line scan. Company names
// are short, so token overlap scores are coarse; below this the match is more
// likely a coincidental shared word than the actual vendor.
const companySimilarityThreshold = 0.6

var fieldOrder = []string{
	FieldCompany,
	FieldGSTNumber,
	FieldInvoiceNumber,
	FieldAmount,
	FieldInvoiceDate,
}

// FieldKeys returns the ordered field names the parser understands.
func FieldKeys() []string {
	keys := make([]string, len(fieldOrder))
	copy(keys, fieldOrder)
	return keys
}

func defaultPatterns() map[string][]string {
	return map[string][]string{
		FieldGSTNumber: {
			`GST(?:\s+|:|\s*No\.?\s*|Number\s*:?)\s*([0-9A-Z]{15})`,
			`GSTIN\s*:?\s*([0-9A-Z]{15})`,
			`\b([0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]{3})\b`,
		},
		FieldInvoiceNumber: {
			`Invoice\s+(?:No\.?|Number|#)\s*:?\s*([\w\-/]+)`,
			`Bill\s+(?:No\.?|Number|#)\s*:?\s*([\w\-/]+)`,
			`(?:Invoice|Bill)\s*:?\s*([\w\-/]+)`,
		},
		FieldAmount: {
			`Total\s+Amount\s*:?\s*(?:Rs\.?|INR|₹)?\s*([\d,]+\.?\d*)`,
			`Grand\s+Total\s*:?\s*(?:Rs\.?|INR|₹)?\s*([\d,]+\.?\d*)`,
			`Amount\s+(?:Due|Payable|Total)\s*:?\s*(?:Rs\.?|INR|₹)?\s*([\d,]+\.?\d*)`,
			`(?:Rs\.?|INR|₹)\s*([\d,]+\.?\d*)`,
		},
		FieldCompany: {
			`(?:Company|Business|Vendor|Seller|From)[\s:]+([^\n]+)`,
			`(?:^|\n)([A-Z][A-Za-z\s]+(?:Ltd|Limited|Inc|LLC|LLP|Pvt|Corporation|Corp|&\s*Co)\.?)(?:\n|$)`,
			`(?:^|\n)([A-Z][A-Za-z\s,]+)(?:\n)(?:[A-Za-z0-9\s,]+){1,2}(?:GST)`,
		},
		FieldInvoiceDate: {
			// ISO before day-first: the day-first pattern would otherwise
			// capture the "24-04-15" tail of "2024-04-15".
			`(?:Invoice\s+Date|Bill\s+Date|Dated?)\s*:?\s*([0-9]{4}-[0-9]{1,2}-[0-9]{1,2})`,
			`(?:Invoice\s+Date|Bill\s+Date|Dated?)\s*:?\s*([0-9]{1,2}[-/.][0-9]{1,2}[-/.][0-9]{2,4})`,
			`(?:Invoice\s+Date|Bill\s+Date|Dated?)\s*:?\s*([0-9]{1,2}\s+[A-Za-z]{3,9},?\s*[0-9]{4})`,
			`(?:Invoice\s+Date|Bill\s+Date|Dated?)\s*:?\s*([A-Za-z]{3,9}\s+[0-9]{1,2},?\s*[0-9]{4})`,
		},
	}
}

// dateLayouts lists the accepted invoice-date spellings, day-first where
// ambiguous (GST invoices follow the Indian convention).
var dateLayouts = []string{
	"2006-1-2",
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2-1-06",
	"2/1/06",
	"2.1.06",
	"2 Jan 2006",
	"2 Jan, 2006",
	"2 January 2006",
	"2 January, 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
}

type knownCompany struct {
	name        string
	fingerprint *textutil.Fingerprint
}

// Parser matches configured field patterns against extracted invoice text.
// Construct once and reuse; a Parser is safe for concurrent use.
type Parser struct {
	patterns map[string][]*regexp.Regexp
	mappings map[string]string
	known    []knownCompany
}

// NewParser compiles the built-in pattern lists, applies configuration
// overrides, and indexes the GST-to-company mappings.
func NewParser(cfg *config.Config) (*Parser, error) {
	merged := defaultPatterns()
	if cfg != nil {
		for field, exprs := range cfg.Extraction.Patterns {
			key := strings.ToLower(strings.TrimSpace(field))
			if _, ok := merged[key]; !ok {
				return nil, fmt.Errorf("unknown extraction field %q (known: %s)", field, strings.Join(fieldOrder, ", "))
			}
			if len(exprs) > 0 {
				merged[key] = exprs
			}
		}
	}

	compiled := make(map[string][]*regexp.Regexp, len(merged))
	for field, exprs := range merged {
		list := make([]*regexp.Regexp, 0, len(exprs))
		for _, expr := range exprs {
			re, err := compilePattern(expr)
			if err != nil {
				return nil, fmt.Errorf("extraction field %s: compile pattern %q: %w", field, expr, err)
			}
			list = append(list, re)
		}
		compiled[field] = list
	}

	parser := &Parser{
		patterns: compiled,
		mappings: make(map[string]string),
	}
	if cfg != nil {
		seen := make(map[string]struct{})
		for gst, company := range cfg.Extraction.GSTCompanyMappings {
			key := normalizeGST(gst)
			name := strings.TrimSpace(company)
			if key == "" || name == "" {
				continue
			}
			parser.mappings[key] = name
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			if fp := textutil.NewFingerprint(name); fp != nil {
				parser.known = append(parser.known, knownCompany{name: name, fingerprint: fp})
			}
		}
	}
	return parser, nil
}

// Parse extracts invoice fields from text. Company resolution falls back from
// patterns to the GST mapping, then to a similarity scan against known
// company names, then to the letterhead line.
func (p *Parser) Parse(text string) invoices.Fields {
	fields := invoices.Fields{
		Company:       p.firstMatch(FieldCompany, text),
		GSTNumber:     normalizeGST(p.firstMatch(FieldGSTNumber, text)),
		InvoiceNumber: p.firstMatch(FieldInvoiceNumber, text),
		Amount:        normalizeAmount(p.firstMatch(FieldAmount, text)),
		InvoiceDate:   normalizeDate(p.firstMatch(FieldInvoiceDate, text)),
	}
	if fields.Company == "" && fields.GSTNumber != "" {
		fields.Company = p.mappings[fields.GSTNumber]
	}
	if fields.Company == "" {
		fields.Company = p.knownCompanyLine(text)
	}
	if fields.Company == "" {
		fields.Company = letterheadLine(text)
	}
	return fields
}

// AllMatches collects every candidate value per field across all patterns,
// deduplicated in match order. The CLI's inspection mode uses this to show
// which patterns fire on a problem document.
func (p *Parser) AllMatches(text string) map[string][]string {
	out := make(map[string][]string, len(fieldOrder))
	for _, field := range fieldOrder {
		seen := make(map[string]struct{})
		var values []string
		for _, re := range p.patterns[field] {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				value := captureOf(m)
				switch field {
				case FieldGSTNumber:
					value = normalizeGST(value)
				case FieldAmount:
					value = normalizeAmount(value)
				case FieldInvoiceDate:
					if normalized := normalizeDate(value); normalized != "" {
						value = normalized
					}
				}
				if value == "" {
					continue
				}
				if _, dup := seen[value]; dup {
					continue
				}
				seen[value] = struct{}{}
				values = append(values, value)
			}
		}
		out[field] = values
	}
	return out
}

// firstMatch returns the first pattern's first capture for the field, in
// list order. Patterns without a capture group contribute their full match.
func (p *Parser) firstMatch(field, text string) string {
	for _, re := range p.patterns[field] {
		if m := re.FindStringSubmatch(text); m != nil {
			if value := captureOf(m); value != "" {
				return value
			}
		}
	}
	return ""
}

func captureOf(m []string) string {
	if len(m) > 1 {
		if captured := strings.TrimSpace(m[1]); captured != "" {
			return captured
		}
	}
	return strings.TrimSpace(m[0])
}

// knownCompanyLine compares each text line against the configured company
// names and returns the best-scoring configured name. Returning the
// configured spelling (not the raw line) keeps library folders stable when
// documents abbreviate or decorate the vendor name.
func (p *Parser) knownCompanyLine(text string) string {
	if len(p.known) == 0 {
		return ""
	}
	best := ""
	bestScore := 0.0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 3 {
			continue
		}
		lineFingerprint := textutil.NewFingerprint(line)
		if lineFingerprint == nil {
			continue
		}
		for _, candidate := range p.known {
			score := textutil.CosineSimilarity(lineFingerprint, candidate.fingerprint)
			if score > bestScore {
				bestScore = score
				best = candidate.name
			}
		}
	}
	if bestScore >= companySimilarityThreshold {
		return best
	}
	return ""
}

// letterheadLine returns the document's first non-empty line when it looks
// like a company name rather than a document label such as "TAX INVOICE".
func letterheadLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if companyLike(line) {
			return line
		}
		return ""
	}
	return ""
}

var documentLabelPrefixes = []string{
	"tax invoice",
	"invoice",
	"bill",
	"receipt",
	"statement",
	"quotation",
	"estimate",
	"original",
	"duplicate",
	"gst",
	"date",
	"page",
}

func companyLike(line string) bool {
	if n := utf8.RuneCountInString(line); n < 3 || n > 80 {
		return false
	}
	lowered := strings.ToLower(line)
	for _, prefix := range documentLabelPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return false
		}
	}
	letters, digits := 0, 0
	for _, r := range line {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	return letters >= 3 && letters > digits
}

// normalizeGST strips separators and uppercases so mapping lookups and
// filenames see one canonical GSTIN spelling.
func normalizeGST(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// normalizeAmount strips thousands separators from a captured amount.
func normalizeAmount(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
}

// normalizeDate parses an extracted date in any accepted layout and returns
// it as YYYY-MM-DD, or "" when no layout fits.
func normalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	candidates := []string{value}
	// Month names arrive in arbitrary case because patterns match
	// case-insensitively; time.Parse wants them capitalized.
	if titled := textutil.TitleCase(value); titled != value {
		candidates = append(candidates, titled)
	}
	for _, candidate := range candidates {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return ""
}
