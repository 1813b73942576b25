// Package extraction pulls structured invoice fields out of PDF documents
// and routes queue items toward filing or manual review.
//
// The Extractor validates candidates (regular .pdf file, size ceiling,
// structural parse), reads the first page's text, and matches ordered,
// configurable regular-expression lists per field. A GST-to-company mapping
// and a known-company line scan backfill the company name when no pattern
// matched. Items with neither a company nor an invoice number park in review
// instead of being filed under a guessed identity.
//
// Pattern tooling for the CLI (converting literal examples into patterns and
// dry-running patterns against text) lives here too, so extraction behavior
// and its operator tooling cannot drift apart.
package extraction
