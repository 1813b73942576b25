package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/logging"
	"github.com/billfold/billfold/internal/notifications"
	"github.com/billfold/billfold/internal/queue"
)

// Poller sweeps the inbox directory on an interval and enqueues new PDFs.
type Poller struct {
	cfg      *config.Config
	logger   *slog.Logger
	ingestor *Ingestor

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPoller constructs an inbox poller with the default notifier.
func NewPoller(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Poller {
	return NewPollerWithDependencies(cfg, store, logger, notifications.NewService(cfg))
}

// NewPollerWithDependencies allows injecting custom dependencies (used for tests).
func NewPollerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Poller {
	p := &Poller{cfg: cfg, ingestor: NewIngestorWithDependencies(cfg, store, logger, notifier)}
	p.SetLogger(logger)
	return p
}

// SetLogger updates the poller's logging destination.
func (p *Poller) SetLogger(logger *slog.Logger) {
	p.logger = logging.NewComponentLogger(logger, "inbox")
	p.ingestor.SetLogger(logger)
}

// Start launches the background sweep loop. It returns an error when the
// poller is already running.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("inbox poller already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.wg.Add(1)
	go p.run(runCtx)
	return nil
}

// Stop terminates the sweep loop and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.mu.Unlock()

	cancel()
	p.wg.Wait()
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()
	interval := p.interval()
	for {
		if _, err := p.ScanOnce(ctx); err != nil {
			p.logger.Error("inbox sweep failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "inbox_sweep_failed"),
				logging.String(logging.FieldErrorHint, "check that the inbox directory exists and is readable"),
			)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

func (p *Poller) interval() time.Duration {
	seconds := p.cfg.Workflow.InboxPollInterval
	if seconds <= 0 {
		seconds = 5
	}
	return time.Duration(seconds) * time.Second
}

func (p *Poller) minFileAge() time.Duration {
	return time.Duration(p.cfg.Workflow.InboxMinFileAge) * time.Second
}

// ScanOnce performs a single inbox sweep and returns how many documents were
// newly enqueued. Per-file problems are logged and skipped; only a failure to
// list the inbox itself is returned as an error.
func (p *Poller) ScanOnce(ctx context.Context) (int, error) {
	logger := logging.WithContext(ctx, p.logger)
	inboxDir := strings.TrimSpace(p.cfg.Paths.InboxDir)
	if inboxDir == "" {
		return 0, errors.New("inbox directory not configured")
	}

	entries, err := os.ReadDir(inboxDir)
	if err != nil {
		return 0, fmt.Errorf("read inbox: %w", err)
	}

	minAge := p.minFileAge()
	added := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return added, ctx.Err()
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			logger.Warn("failed to inspect inbox file; skipping this sweep",
				logging.Error(err),
				logging.String("source_file", entry.Name()),
			)
			continue
		}
		if minAge > 0 && time.Since(info.ModTime()) < minAge {
			// Still settling; a partial upload would fingerprint differently
			// from the finished file.
			logger.Debug("inbox file too new; waiting for it to settle",
				logging.String("source_file", entry.Name()),
			)
			continue
		}
		if p.ingest(ctx, logger, filepath.Join(inboxDir, entry.Name())) {
			added++
		}
	}
	if added > 0 {
		logger.Info("inbox sweep enqueued new documents", logging.Int("added", added))
	}
	return added, nil
}

// ingest stages one inbox file and enqueues it. Returns true when a new queue
// item was created.
func (p *Poller) ingest(ctx context.Context, logger *slog.Logger, path string) bool {
	item, created, err := p.ingestor.Ingest(ctx, path)
	if err != nil {
		logger.Warn("failed to ingest inbox file; will retry next sweep",
			logging.Error(err),
			logging.String("source_file", filepath.Base(path)),
			logging.String(logging.FieldErrorHint, "check staging directory space and queue database access"),
		)
		return false
	}
	if !created {
		logger.Debug("inbox file already known; not enqueuing again",
			logging.String("source_file", filepath.Base(path)),
			logging.Int64(logging.FieldItemID, item.ID),
			logging.String("status", string(item.Status)),
		)
		return false
	}
	return true
}
