// Package inbox watches the intake directory for new invoice PDFs and feeds
// them into the processing queue. Files are staged by verified copy and
// deduplicated by content fingerprint, so re-dropping a document the queue
// already saw is a no-op.
package inbox
