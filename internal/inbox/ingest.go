package inbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/fileutil"
	"github.com/billfold/billfold/internal/logging"
	"github.com/billfold/billfold/internal/notifications"
	"github.com/billfold/billfold/internal/queue"
	"github.com/billfold/billfold/internal/services"
)

// fingerprintPrefixLen is how much of the content hash goes into the staged
// filename, enough to keep two same-named documents apart in staging.
const fingerprintPrefixLen = 12

// Ingestor stages a PDF into the staging directory and enqueues it for
// extraction. The background poller and the daemon's manual add share it so
// both intake paths fingerprint, deduplicate, and notify identically.
type Ingestor struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	notifier notifications.Service
}

// NewIngestor constructs an ingestor with the default notifier.
func NewIngestor(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Ingestor {
	return NewIngestorWithDependencies(cfg, store, logger, notifications.NewService(cfg))
}

// NewIngestorWithDependencies allows injecting custom dependencies (used for tests).
func NewIngestorWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Ingestor {
	g := &Ingestor{cfg: cfg, store: store, notifier: notifier}
	g.SetLogger(logger)
	return g
}

// SetLogger updates the ingestor's logging destination.
func (g *Ingestor) SetLogger(logger *slog.Logger) {
	g.logger = logging.NewComponentLogger(logger, "inbox")
}

// Ingest validates sourcePath, stages a verified copy, and creates a pending
// queue item. Content that is already queued is not staged again: the existing
// item comes back with created == false. Validation problems carry the
// services.ErrValidation marker so callers can report them as user errors.
func (g *Ingestor) Ingest(ctx context.Context, sourcePath string) (item *queue.Item, created bool, err error) {
	path, err := validateSource(sourcePath)
	if err != nil {
		return nil, false, err
	}
	base := filepath.Base(path)

	fingerprint, err := fileutil.Fingerprint(path)
	if err != nil {
		return nil, false, services.Wrap(services.ErrTransient, "inbox", "fingerprint invoice", "could not hash "+base, err)
	}
	existing, err := g.store.FindByFingerprint(ctx, fingerprint)
	if err != nil {
		return nil, false, services.Wrap(services.ErrTransient, "inbox", "fingerprint lookup", "queue database unavailable", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	staged := filepath.Join(g.cfg.Paths.StagingDir, stagedName(fingerprint, base))
	if err := fileutil.CopyFileVerified(path, staged); err != nil {
		return nil, false, services.Wrap(services.ErrTransient, "inbox", "stage invoice", "could not stage "+base, err)
	}

	item, err = g.store.NewInvoice(ctx, path, staged, fingerprint)
	if err != nil {
		if removeErr := os.Remove(staged); removeErr != nil {
			g.logger.Warn("failed to remove staged copy after enqueue failure",
				logging.Error(removeErr),
				logging.String("staged_file", staged),
			)
		}
		return nil, false, services.Wrap(services.ErrTransient, "inbox", "enqueue invoice", "could not create queue item", err)
	}

	logger := logging.WithContext(ctx, g.logger)
	logger.Info("invoice detected",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("source_file", base),
		logging.String("staged_file", staged),
		logging.String("fingerprint", fingerprint[:fingerprintPrefixLen]),
		logging.String(logging.FieldEventType, "invoice_detected"),
	)
	if g.notifier != nil {
		if err := g.notifier.NotifyInvoiceDetected(ctx, base); err != nil {
			logger.Debug("detected notification failed", logging.Error(err))
		}
	}
	return item, true, nil
}

// validateSource normalizes the path and rejects anything that is not an
// existing PDF file.
func validateSource(sourcePath string) (string, error) {
	trimmed := strings.TrimSpace(sourcePath)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "inbox", "validate source", "source path is required", nil)
	}
	path, err := filepath.Abs(trimmed)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "inbox", "validate source", "could not resolve "+trimmed, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrValidation, "inbox", "validate source", fmt.Sprintf("file %s does not exist", path), nil)
		}
		return "", services.Wrap(services.ErrValidation, "inbox", "validate source", "could not inspect "+path, err)
	}
	if info.IsDir() {
		return "", services.Wrap(services.ErrValidation, "inbox", "validate source", path+" is a directory, not a PDF", nil)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "", services.Wrap(services.ErrValidation, "inbox", "validate source", fmt.Sprintf("unsupported extension %q, only PDFs are filed", filepath.Ext(path)), nil)
	}
	return path, nil
}

// stagedName builds the staging filename: a fingerprint prefix plus the
// original basename.
func stagedName(fingerprint, base string) string {
	prefix := fingerprint
	if len(prefix) > fingerprintPrefixLen {
		prefix = prefix[:fingerprintPrefixLen]
	}
	return prefix + "-" + base
}
