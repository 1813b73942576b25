// Package invoices defines the domain view shared between workflow stages.
//
// Fields captures the identifying values pulled out of an invoice PDF
// (company, invoice number, GST number, amount, date). The extraction stage
// populates Fields onto the queue item; the filing stage reads them back to
// build the library destination. Keeping the type here lets both stages agree
// on shape without depending on each other.
//
// # Key Types
//
// Fields: extracted invoice identity. Persisted as flat columns on the queue
// item rather than a serialized blob, so review edits stay per-column.
//
// Document: a queue item projected into the filing domain: its fields plus
// the on-disk paths and the date fallback used when no invoice date parsed.
//
// # Entry Points
//
// FromItem/WriteToItem: move Fields between the queue row and the domain type.
// LibraryPath: compute the <company>/<date>/<invoice>.pdf destination.
// Fields.Complete: gate between ready_to_file and manual review.
package invoices
