package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/billfold/billfold/internal/fileutil"
	"github.com/billfold/billfold/internal/logging"
)

// EventKind labels one Run event.
type EventKind string

const (
	// EventStarted is emitted once before the first file.
	EventStarted EventKind = "started"
	// EventCopied reports a successful copy.
	EventCopied EventKind = "copied"
	// EventSkipped reports a file skipped without error (missing source,
	// self-copy, or an unresolved conflict).
	EventSkipped EventKind = "skipped"
	// EventFailed reports a per-file failure; the run continues.
	EventFailed EventKind = "failed"
	// EventCompleted is emitted exactly once after the last file.
	EventCompleted EventKind = "completed"
)

// Event reports one step of an organize run.
type Event struct {
	Kind        EventKind
	Source      string
	Destination string
	// Reason explains a skip or carries the underlying failure cause.
	Reason string
	// Message is the formatted operator-facing message on failed events.
	Message string
	// Copied is the running success count; on completed it is the final count.
	Copied int
}

// Job is the immutable input to one organize run. Sources are processed in
// order; DestDir must exist and be writable. Renamer is consulted only in
// AutoRename mode.
type Job struct {
	Sources []string
	DestDir string
	Mode    ConflictMode
	Renamer Renamer
}

// Result summarizes a finished run. Errors holds one formatted message per
// failed file, in input order.
type Result struct {
	Copied  int
	Skipped int
	Errors  []string
	Elapsed time.Duration
}

// Run is the handle to an in-flight organize job.
type Run struct {
	events chan Event
	done   chan struct{}
	result Result
}

// Events streams per-file progress. The channel is buffered for the whole
// job (one event per source plus started and completed), so the worker never
// blocks on a slow or absent consumer. It is closed when the run finishes.
func (r *Run) Events() <-chan Event {
	return r.events
}

// Wait blocks until the run completes and returns its result.
func (r *Run) Wait() Result {
	<-r.done
	return r.result
}

// Start launches job on its own goroutine and returns the run handle. The
// context enriches log records only: a started run always processes its full
// source list. Per-file failures are contained to their file; the run always
// completes and reports a count, even when every file failed.
func Start(ctx context.Context, logger *slog.Logger, job Job) *Run {
	run := &Run{
		events: make(chan Event, len(job.Sources)+2),
		done:   make(chan struct{}),
	}
	go run.process(ctx, logger, job)
	return run
}

func (r *Run) process(ctx context.Context, logger *slog.Logger, job Job) {
	defer close(r.done)
	defer close(r.events)

	log := logging.WithContext(ctx, logger)
	start := time.Now()

	copied := 0
	skipped := 0
	var errMessages []string

	fail := func(source string, cause error) {
		message := fmt.Sprintf("Failed to copy %s: %v", source, cause)
		log.Error("file copy failed",
			logging.String("source_file", source),
			logging.Error(cause),
		)
		errMessages = append(errMessages, message)
		r.events <- Event{Kind: EventFailed, Source: source, Reason: cause.Error(), Message: message, Copied: copied}
	}
	skip := func(source, dest, reason string) {
		skipped++
		r.events <- Event{Kind: EventSkipped, Source: source, Destination: dest, Reason: reason, Copied: copied}
	}

	r.events <- Event{Kind: EventStarted, Copied: 0}

	for _, source := range job.Sources {
		if _, err := os.Stat(source); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Warn("source file does not exist; skipping",
					logging.String("source_file", source),
				)
				skip(source, "", "source does not exist")
				continue
			}
			fail(source, err)
			continue
		}

		dest := filepath.Join(job.DestDir, filepath.Base(source))

		absSource, err := filepath.Abs(source)
		if err != nil {
			fail(source, err)
			continue
		}
		absDest, err := filepath.Abs(dest)
		if err != nil {
			fail(source, err)
			continue
		}
		if absSource == absDest {
			log.Info("source and destination are the same file; skipping",
				logging.String("source_file", source),
			)
			skip(source, dest, "source equals destination")
			continue
		}

		if _, err := os.Stat(dest); err == nil {
			switch job.Mode {
			case Overwrite:
				log.Info("destination exists; overwriting",
					logging.String("source_file", source),
					logging.String("destination", dest),
				)
			case AutoRename:
				renamed, err := renameFor(job, filepath.Base(source))
				if err != nil {
					fail(source, err)
					continue
				}
				dest = filepath.Join(job.DestDir, renamed)
				log.Info("destination exists; copying under a new name",
					logging.String("source_file", source),
					logging.String("destination", dest),
				)
			default:
				log.Info("destination exists; skipping",
					logging.String("source_file", source),
					logging.String("destination", dest),
				)
				skip(source, dest, "destination exists")
				continue
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			fail(source, err)
			continue
		}

		if err := fileutil.CopyFilePreserving(source, dest); err != nil {
			fail(source, err)
			continue
		}
		copied++
		r.events <- Event{Kind: EventCopied, Source: source, Destination: dest, Copied: copied}
	}

	r.result = Result{
		Copied:  copied,
		Skipped: skipped,
		Errors:  errMessages,
		Elapsed: time.Since(start),
	}
	log.Info("organize run completed",
		logging.Int("copied", copied),
		logging.Int("skipped", skipped),
		logging.Int("failed", len(errMessages)),
		logging.Duration("elapsed", r.result.Elapsed),
	)
	r.events <- Event{Kind: EventCompleted, Copied: copied}
}

func renameFor(job Job, filename string) (string, error) {
	if job.Renamer == nil {
		return "", errors.New("auto-rename mode requires a renamer")
	}
	renamed, err := job.Renamer.Rename(job.DestDir, filename)
	if err != nil {
		return "", fmt.Errorf("rename %s: %w", filename, err)
	}
	return renamed, nil
}
