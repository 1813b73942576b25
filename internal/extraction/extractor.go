package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/logging"
	"github.com/billfold/billfold/internal/notifications"
	"github.com/billfold/billfold/internal/queue"
	"github.com/billfold/billfold/internal/services"
	"github.com/billfold/billfold/internal/stage"
)

// Extractor reads invoice fields from queued PDFs. Items with enough identity
// continue toward filing; the rest park in review with a reason.
type Extractor struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
	parser   *Parser
}

// NewExtractor constructs the extraction handler. Construction fails when the
// configured extraction patterns do not compile.
func NewExtractor(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) (*Extractor, error) {
	parser, err := NewParser(cfg)
	if err != nil {
		return nil, err
	}
	ex := &Extractor{
		store:    store,
		cfg:      cfg,
		notifier: notifier,
		parser:   parser,
	}
	ex.SetLogger(logger)
	return ex, nil
}

// SetLogger updates the extractor's logging destination while preserving component labeling.
func (e *Extractor) SetLogger(logger *slog.Logger) {
	e.logger = logging.NewComponentLogger(logger, "extractor")
}

func (e *Extractor) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, e.logger)
	item.InitProgress("Extracting", "Starting invoice extraction")
	logger.Debug("starting extraction preparation")
	return nil
}

func (e *Extractor) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, e.logger)
	stageStart := time.Now()

	path, err := stage.WorkingFile(item)
	if err != nil {
		return err
	}

	if err := ValidateFile(path, e.cfg.MaxFileSizeBytes()); err != nil {
		return services.Wrap(
			services.ErrValidation,
			"extraction",
			"validate pdf",
			"Document failed PDF validation; confirm the file is a readable invoice",
			err,
		)
	}
	e.updateProgress(ctx, item, "Reading document text", 25)

	text, err := ReadFirstPageText(path)
	if err != nil {
		return services.Wrap(
			services.ErrValidation,
			"extraction",
			"read first page",
			"No extractable text on the first page; the document may be scanned images",
			err,
		)
	}
	e.updateProgress(ctx, item, "Matching field patterns", 60)

	fields := e.parser.Parse(text)
	fields.WriteToItem(item)

	if !fields.Complete() {
		reason := fmt.Sprintf("Missing %s", strings.Join(fields.Missing(), " and "))
		logRoutingDecision(logger, "review", reason)
		item.SetReview(reason)
		item.SetProgressComplete("Review", "Waiting for manual field entry")
		logging.WarnWithContext(logger, "invoice needs manual review", "extraction_incomplete",
			logging.String("source_file", strings.TrimSpace(item.SourcePath)),
			logging.String(logging.FieldErrorHint, "fill the missing fields with billfold review set, or add a pattern for this vendor"),
			logging.String(logging.FieldImpact, "document stays unfiled until reviewed"),
		)
		if e.notifier != nil {
			if err := e.notifier.NotifyReviewRequired(ctx, filepath.Base(item.SourcePath), reason); err != nil {
				logger.Debug("review notification failed", logging.Error(err))
			}
		}
		return nil
	}

	logRoutingDecision(logger, "file", "company and invoice number identified")
	item.SetProgressComplete("Extracted", extractionSummary(fields.Company, fields.InvoiceNumber))

	logger.Info(
		"extraction stage summary",
		logging.String("company", fields.Company),
		logging.String("invoice_number", fields.InvoiceNumber),
		logging.String("gst_number", fields.GSTNumber),
		logging.String("amount", fields.Amount),
		logging.String("invoice_date", fields.InvoiceDate),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

// HealthCheck verifies extraction dependencies.
func (e *Extractor) HealthCheck(ctx context.Context) stage.Health {
	const name = "extractor"
	if e.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(e.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	if e.parser == nil {
		return stage.Unhealthy(name, "field parser unavailable")
	}
	return stage.Healthy(name)
}

// updateProgress persists a progress update without mutating the caller's
// item on failure.
func (e *Extractor) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, e.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := e.store.UpdateProgress(ctx, &copy); err != nil {
		logger.Warn("failed to persist extraction progress; queue status may lag",
			logging.Error(err),
			logging.String(logging.FieldEventType, "queue_progress_persist_failed"),
			logging.String(logging.FieldErrorHint, "check queue database access"),
			logging.String(logging.FieldImpact, "queue UI may show stale progress"),
		)
		return
	}
	*item = copy
}

// logRoutingDecision logs the file-versus-review routing with consistent fields.
func logRoutingDecision(logger *slog.Logger, result, reason string) {
	attrs := append(logging.DecisionAttrs("extraction_routing", result, reason),
		logging.String("decision_options", "file, review"),
	)
	logger.Info("extraction routing decision", logging.Args(attrs...)...)
}

func extractionSummary(company, invoiceNumber string) string {
	switch {
	case company != "" && invoiceNumber != "":
		return fmt.Sprintf("Identified %s invoice %s", company, invoiceNumber)
	case company != "":
		return fmt.Sprintf("Identified %s invoice", company)
	default:
		return fmt.Sprintf("Identified invoice %s", invoiceNumber)
	}
}
