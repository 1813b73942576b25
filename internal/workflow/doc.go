// Package workflow advances queue items through the processing stages.
//
// The Manager polls the queue, reclaims stale work via heartbeats, and feeds
// items into the registered stage handlers (extractor, filer) while capturing
// progress and failure metadata. It also aggregates queue stats, calls stage
// health checks, and records the last processed item for status reporting.
//
// Processing runs in two independent lanes: extract (pending documents being
// read and identified) and file (identified documents being copied into the
// library). Each lane polls for items matching its statuses and processes
// them sequentially, so extraction of document B can proceed while document A
// is filed.
//
// Add new lifecycle stages by extending StageSet, updating the queue status
// enums, and teaching the manager how to transition items; this package is
// the authoritative home for that coordination logic.
package workflow
