package daemon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/billfold/billfold/internal/logging"
	"github.com/billfold/billfold/internal/queue"
	"github.com/billfold/billfold/internal/services"
)

// ReviewPatch carries field corrections for a queue item. Nil pointers leave
// the stored value untouched, so callers can fix a single field.
type ReviewPatch struct {
	CompanyName   *string
	InvoiceNumber *string
	GSTNumber     *string
	Amount        *string
	InvoiceDate   *string
	Requeue       bool
}

// ReviewUpdate applies manual corrections to a parked item and, when Requeue
// is set, moves a review item to ready_to_file so the filing lane picks it up
// with the corrected fields. Items that are mid-stage cannot be edited.
func (d *Daemon) ReviewUpdate(ctx context.Context, id int64, patch ReviewPatch) (*queue.Item, bool, error) {
	if d.store == nil {
		return nil, false, errors.New("queue store unavailable")
	}

	item, err := d.store.GetByID(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("load item %d: %w", id, err)
	}
	if item == nil {
		return nil, false, services.Wrap(services.ErrNotFound, "daemon", "review update", fmt.Sprintf("queue item %d not found", id), nil)
	}
	if item.IsProcessing() {
		return nil, false, services.Wrap(services.ErrValidation, "daemon", "review update", fmt.Sprintf("item %d is %s and cannot be edited while processing", id, item.Status), nil)
	}

	changed := false
	for _, field := range []struct {
		dst *string
		src *string
	}{
		{&item.CompanyName, patch.CompanyName},
		{&item.InvoiceNumber, patch.InvoiceNumber},
		{&item.GSTNumber, patch.GSTNumber},
		{&item.Amount, patch.Amount},
		{&item.InvoiceDate, patch.InvoiceDate},
	} {
		if field.src != nil {
			*field.dst = strings.TrimSpace(*field.src)
			changed = true
		}
	}

	requeued := false
	if patch.Requeue {
		if item.Status != queue.StatusReview {
			return nil, false, services.Wrap(services.ErrValidation, "daemon", "review update", fmt.Sprintf("item %d is %s, only review items can be requeued", id, item.Status), nil)
		}
		item.Status = queue.StatusReadyToFile
		item.NeedsReview = false
		item.ReviewReason = ""
		item.ErrorMessage = ""
		item.SetProgress("Review resolved", "Corrections applied, ready to file", 0)
		requeued = true
	}

	if !changed && !requeued {
		return item, false, nil
	}

	if err := d.store.Update(ctx, item); err != nil {
		return nil, false, fmt.Errorf("persist review update for item %d: %w", id, err)
	}

	d.logger.Info("review item updated",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.Bool("requeued", requeued),
		logging.String(logging.FieldEventType, "review_update"),
	)
	return item, requeued, nil
}
