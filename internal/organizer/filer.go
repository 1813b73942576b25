package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/fileutil"
	"github.com/billfold/billfold/internal/invoices"
	"github.com/billfold/billfold/internal/logging"
	"github.com/billfold/billfold/internal/notifications"
	"github.com/billfold/billfold/internal/queue"
	"github.com/billfold/billfold/internal/services"
	"github.com/billfold/billfold/internal/stage"
)

// Filer copies extracted invoices from staging into the library layout. The
// copy itself runs through the organize worker so filing and ad-hoc batches
// share one set of conflict policies.
type Filer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
}

// NewFiler constructs the filing stage handler.
func NewFiler(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Filer {
	f := &Filer{store: store, cfg: cfg, notifier: notifier}
	f.SetLogger(logger)
	return f
}

// SetLogger updates the filer's logging destination while preserving component labeling.
func (f *Filer) SetLogger(logger *slog.Logger) {
	f.logger = logging.NewComponentLogger(logger, "filer")
}

func (f *Filer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, f.logger)
	item.InitProgress("Filing", "Preparing library destination")
	logger.Debug("starting filing preparation")
	return nil
}

func (f *Filer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, f.logger)
	stageStart := time.Now()

	path, err := stage.WorkingFile(item)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(
			services.ErrValidation,
			"filing",
			"inspect staged file",
			"Staged file is missing or unreadable; re-add the document",
			err,
		)
	}

	fields := invoices.FromItem(item)
	pathFields := fields
	if !f.cfg.Organizer.AmountInFilename {
		pathFields.Amount = ""
	}
	doc := invoices.Document{
		Fields:       pathFields,
		SourcePath:   item.SourcePath,
		StagedPath:   item.StagedPath,
		FallbackDate: info.ModTime(),
	}
	destPath := doc.LibraryPath(f.cfg.Paths.LibraryDir)
	destDir := filepath.Dir(destPath)

	// The worker copies under the source basename, so the staged copy takes
	// the library filename before the job runs.
	if path, err = f.ensureStagedName(item, path, filepath.Base(destPath)); err != nil {
		return err
	}

	f.updateProgress(ctx, item, "Copying into library", 40)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "filing", "ensure library directory", "Failed to create the library directory", err)
	}

	run := Start(ctx, logger, Job{
		Sources: []string{path},
		DestDir: destDir,
		Mode:    ParseConflictMode(f.cfg.Organizer.ConflictMode),
		Renamer: DefaultRenamer,
	})
	var finalPath, skipReason string
	for ev := range run.Events() {
		switch ev.Kind {
		case EventCopied:
			finalPath = ev.Destination
		case EventSkipped:
			skipReason = ev.Reason
		}
	}
	result := run.Wait()

	if len(result.Errors) > 0 {
		return services.Wrap(services.ErrTransient, "filing", "copy into library", result.Errors[0], nil)
	}
	if result.Copied == 0 {
		reason := "Filing skipped"
		if skipReason != "" {
			reason = fmt.Sprintf("Filing skipped: %s", skipReason)
		}
		attrs := append(logging.DecisionAttrs("filing_routing", "review", reason),
			logging.String("decision_options", "file, review"),
		)
		logger.Info("filing routing decision", logging.Args(attrs...)...)
		item.SetReview(reason)
		progressMsg := "Waiting for manual resolution"
		impact := "document stays in staging until reviewed"
		if reviewPath, mvErr := f.moveToReview(item, path); mvErr != nil {
			logger.Warn("failed to move staged copy into the review directory",
				logging.Error(mvErr),
				logging.String("staged_file", path),
			)
		} else {
			progressMsg = fmt.Sprintf("Moved to review: %s", filepath.Base(reviewPath))
			impact = "document waits in the review directory until resolved"
		}
		item.SetProgressComplete("Review", progressMsg)
		logging.WarnWithContext(logger, "invoice could not be filed", "filing_skipped",
			logging.String("destination", destPath),
			logging.String(logging.FieldErrorHint, "change the conflict mode, or adjust the fields with billfold review set"),
			logging.String(logging.FieldImpact, impact),
		)
		if f.notifier != nil {
			if err := f.notifier.NotifyReviewRequired(ctx, filepath.Base(item.SourcePath), reason); err != nil {
				logger.Debug("review notification failed", logging.Error(err))
			}
		}
		return nil
	}

	item.FinalFile = finalPath
	f.updateProgress(ctx, item, "Cleaning up staging", 85)
	f.cleanup(ctx, item, path)

	item.SetProgressComplete("Filed", fmt.Sprintf("Filed as %s", filepath.Base(finalPath)))
	logger.Info(
		"filing stage summary",
		logging.String("final_file", finalPath),
		logging.String("company", fields.Company),
		logging.String("invoice_number", fields.InvoiceNumber),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	if f.notifier != nil {
		if err := f.notifier.NotifyFiled(ctx, fields.Company, finalPath); err != nil {
			logger.Debug("filed notification failed", logging.Error(err))
		}
	}
	return nil
}

// HealthCheck verifies filing dependencies.
func (f *Filer) HealthCheck(ctx context.Context) stage.Health {
	const name = "filer"
	if f.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(f.cfg.Paths.LibraryDir) == "" {
		return stage.Unhealthy(name, "library directory not configured")
	}
	return stage.Healthy(name)
}

// ensureStagedName renames the working copy to the library filename in place
// (staging, or the review directory after a requeue). A name already taken
// there falls back to the next free candidate; the library-side conflict
// policy is applied later by the worker.
func (f *Filer) ensureStagedName(item *queue.Item, path, wantName string) (string, error) {
	if filepath.Base(path) == wantName {
		return path, nil
	}
	workDir := filepath.Dir(path)
	name := wantName
	if _, err := os.Stat(filepath.Join(workDir, wantName)); err == nil {
		next, nextErr := NextAvailable(workDir, wantName)
		if nextErr != nil {
			return "", services.Wrap(services.ErrTransient, "filing", "allocate staged filename", "Unable to allocate a staging filename", nextErr)
		}
		name = next
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", services.Wrap(services.ErrTransient, "filing", "probe staged filename", "Unable to inspect the staging directory", err)
	}
	renamed := filepath.Join(workDir, name)
	if err := os.Rename(path, renamed); err != nil {
		return "", services.Wrap(services.ErrTransient, "filing", "rename staged file", "Failed to rename the staged copy", err)
	}
	item.StagedPath = renamed
	return renamed, nil
}

// moveToReview relocates the staged copy into the review directory so a
// parked document sits somewhere an operator will look, under its library
// filename. The queue item follows the file; a later requeue picks it up from
// the new location.
func (f *Filer) moveToReview(item *queue.Item, path string) (string, error) {
	reviewDir := strings.TrimSpace(f.cfg.Paths.ReviewDir)
	if reviewDir == "" {
		return "", services.Wrap(
			services.ErrConfiguration,
			"filing",
			"resolve review dir",
			"Review directory not configured; set review_dir in your billfold config.toml",
			nil,
		)
	}
	if err := os.MkdirAll(reviewDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "filing", "ensure review dir", "Failed to create review directory", err)
	}
	name, err := NextAvailable(reviewDir, filepath.Base(path))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "filing", "allocate review filename", "Unable to allocate review filename", err)
	}
	target := filepath.Join(reviewDir, name)
	if err := fileutil.MoveFile(path, target); err != nil {
		return "", services.Wrap(services.ErrTransient, "filing", "move review file", "Failed to move file into review directory", err)
	}
	item.StagedPath = target
	return target, nil
}

// cleanup removes the staged copy once the library holds the file, and the
// inbox original when configured to do so. Failures only warn: the filed copy
// is already in place.
func (f *Filer) cleanup(ctx context.Context, item *queue.Item, stagedPath string) {
	logger := logging.WithContext(ctx, f.logger)
	if err := os.Remove(stagedPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to remove staged copy after filing",
			logging.Error(err),
			logging.String("staged_file", stagedPath),
		)
	} else {
		item.StagedPath = ""
	}
	if !f.cfg.Organizer.RemoveSourceAfterFiling {
		return
	}
	source := strings.TrimSpace(item.SourcePath)
	if source == "" {
		return
	}
	if err := os.Remove(source); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to remove source file after filing",
			logging.Error(err),
			logging.String("source_file", source),
		)
	}
}

// updateProgress persists a progress update without mutating the caller's
// item on failure.
func (f *Filer) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, f.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := f.store.UpdateProgress(ctx, &copy); err != nil {
		logger.Warn("failed to persist filing progress; queue status may lag",
			logging.Error(err),
			logging.String(logging.FieldEventType, "queue_progress_persist_failed"),
			logging.String(logging.FieldErrorHint, "check queue database access"),
			logging.String(logging.FieldImpact, "queue UI may show stale progress"),
		)
		return
	}
	*item = copy
}
