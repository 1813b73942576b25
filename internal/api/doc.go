// Package api defines wire-format types and converters for the IPC layer. It
// translates internal queue models into transport-friendly DTOs so the CLI can
// render one shape whether an item came over the socket or straight from the
// queue database.
//
// # Key Types
//
// QueueItem: transport representation of a queue entry with extracted invoice
// fields, progress, and review state.
//
// WorkflowStatus: daemon running state, queue stats, stage health, and last item.
//
// StatusLine: a labelled check result (ok/info/warn/error) for status output.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Internal enums (queue.Status, queue
// processing lanes) are exposed as lowercase strings. Timestamps use RFC3339
// with milliseconds.
package api
