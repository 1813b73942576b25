// Package organizer copies invoice files into their destination folders and
// files queued invoices into the library.
//
// The core is a sequential batch copier: a Job names source files, a
// destination folder, and a conflict policy; Start runs the job on its own
// goroutine and returns a Run handle streaming per-file events and a final
// result (copied count plus ordered error messages). Per-file failures never
// abort a run. The Filer stage handler wraps a single-file job with the
// library path layout so the workflow manager can file extracted invoices
// with the same policies the CLI applies to ad-hoc batches; documents parked
// by a conflict skip move into the review directory.
package organizer
