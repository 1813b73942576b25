// Package notifications delivers push notifications for workflow milestones
// via ntfy.
//
// NewService returns a noop implementation when no topic is configured, so
// callers never need nil checks. Each notification kind carries its own
// title, tags, and priority, and can be switched off individually in the
// [notifications] config section; suppressed kinds return nil without
// touching the network.
//
// Notification failures are advisory: stages log them at debug level and
// keep going, because a missed push must never fail an invoice.
package notifications
