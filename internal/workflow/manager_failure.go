package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/billfold/billfold/internal/logging"
	"github.com/billfold/billfold/internal/queue"
	"github.com/billfold/billfold/internal/services"
)

// handleStageFailure persists the outcome of a failed stage. Validation and
// configuration errors park the item in review for an operator decision;
// everything else marks it failed and retryable.
func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	base := m.logger
	if base == nil {
		base = logging.NewNop()
	}
	logger := logging.WithContext(ctx, base).With(logging.String(logging.FieldComponent, "workflow-manager"))

	message := m.classifyStageFailure(stageName, stageErr)
	resolved := services.FailureStatus(stageErr)
	switch resolved {
	case queue.StatusReview:
		item.SetReview(message)
		item.ProgressStage = "Review"
		item.ProgressMessage = message
		item.ErrorMessage = message
	default:
		item.SetFailed(message)
	}

	logger.Error("stage failed",
		logging.Error(stageErr),
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.Alert("stage_failure"),
		logging.String("resolved_status", string(resolved)),
		logging.String("error_message", strings.TrimSpace(message)),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.setLastItem(item)
	m.notifyStageFailure(ctx, logger, stageName, item, stageErr, resolved)
}

func (m *Manager) notifyStageFailure(ctx context.Context, logger *slog.Logger, stageName string, item *queue.Item, stageErr error, resolved queue.Status) {
	if m.notifier == nil || stageErr == nil {
		return
	}
	var err error
	if resolved == queue.StatusReview {
		err = m.notifier.NotifyReviewRequired(ctx, filepath.Base(item.SourcePath), item.ReviewReason)
	} else {
		err = m.notifier.NotifyError(ctx, stageErr, fmt.Sprintf("%s (item #%d)", stageName, item.ID))
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send failure notification")
		} else {
			logger.Debug("stage failure notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) classifyStageFailure(stageName string, stageErr error) string {
	if stageErr == nil {
		return fmt.Sprintf("%s failed without error detail", stageName)
	}
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = fmt.Sprintf("%s failed", stageName)
	}
	return message
}
