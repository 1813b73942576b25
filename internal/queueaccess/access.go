package queueaccess

import (
	"context"
	"fmt"
	"strings"

	"github.com/billfold/billfold/internal/api"
	"github.com/billfold/billfold/internal/ipc"
	"github.com/billfold/billfold/internal/queue"
	"github.com/billfold/billfold/internal/services"
)

// Access provides queue operations regardless of IPC or direct store backing.
// Describe and ReviewUpdate report a missing item as a nil item with a nil
// error on both backends.
type Access interface {
	Stats(ctx context.Context) (map[string]int, error)
	List(ctx context.Context, statuses []string) ([]api.QueueItem, error)
	Describe(ctx context.Context, id int64) (*api.QueueItem, error)
	ClearAll(ctx context.Context) (int64, error)
	ClearCompleted(ctx context.Context) (int64, error)
	ClearFailed(ctx context.Context) (int64, error)
	ResetStuck(ctx context.Context) (int64, error)
	RetryAll(ctx context.Context) (int64, error)
	Retry(ctx context.Context, ids []int64) (int64, error)
	ReviewUpdate(ctx context.Context, req ipc.ReviewUpdateRequest) (*api.QueueItem, bool, error)
	Health(ctx context.Context) (queue.HealthSummary, error)
	DatabaseHealth(ctx context.Context) (queue.DatabaseHealth, error)
}

// NewIPCAccess returns an Access backed by daemon IPC.
func NewIPCAccess(client *ipc.Client) Access {
	return &ipcAccess{client: client}
}

// NewStoreAccess returns an Access backed by direct DB access.
func NewStoreAccess(store *queue.Store) Access {
	return &storeAccess{store: store, service: api.NewQueueService(store)}
}

type ipcAccess struct {
	client *ipc.Client
}

func (a *ipcAccess) Stats(_ context.Context) (map[string]int, error) {
	resp, err := a.client.Status()
	if err != nil {
		return nil, err
	}
	return resp.QueueStats, nil
}

func (a *ipcAccess) List(_ context.Context, statuses []string) ([]api.QueueItem, error) {
	resp, err := a.client.QueueList(statuses)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (a *ipcAccess) Describe(_ context.Context, id int64) (*api.QueueItem, error) {
	resp, err := a.client.QueueDescribe(id)
	if err != nil {
		// net/rpc flattens errors to strings; recover the absent case.
		if strings.Contains(err.Error(), "not found") {
			return nil, nil
		}
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	return &resp.Item, nil
}

func (a *ipcAccess) ClearAll(_ context.Context) (int64, error) {
	resp, err := a.client.QueueClear()
	if err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

func (a *ipcAccess) ClearCompleted(_ context.Context) (int64, error) {
	resp, err := a.client.QueueClearCompleted()
	if err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

func (a *ipcAccess) ClearFailed(_ context.Context) (int64, error) {
	resp, err := a.client.QueueClearFailed()
	if err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

func (a *ipcAccess) ResetStuck(_ context.Context) (int64, error) {
	resp, err := a.client.QueueResetStuck()
	if err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

func (a *ipcAccess) RetryAll(_ context.Context) (int64, error) {
	resp, err := a.client.QueueRetry(nil)
	if err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

func (a *ipcAccess) Retry(_ context.Context, ids []int64) (int64, error) {
	resp, err := a.client.QueueRetry(ids)
	if err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

func (a *ipcAccess) ReviewUpdate(_ context.Context, req ipc.ReviewUpdateRequest) (*api.QueueItem, bool, error) {
	resp, err := a.client.ReviewUpdate(req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return nil, false, nil
		}
		return nil, false, err
	}
	if resp == nil {
		return nil, false, nil
	}
	return &resp.Item, resp.Requeued, nil
}

func (a *ipcAccess) Health(_ context.Context) (queue.HealthSummary, error) {
	resp, err := a.client.QueueHealth()
	if err != nil {
		return queue.HealthSummary{}, err
	}
	return queue.HealthSummary{
		Total:      resp.Total,
		Pending:    resp.Pending,
		Processing: resp.Processing,
		Review:     resp.Review,
		Failed:     resp.Failed,
		Completed:  resp.Completed,
	}, nil
}

func (a *ipcAccess) DatabaseHealth(_ context.Context) (queue.DatabaseHealth, error) {
	resp, err := a.client.DatabaseHealth()
	if err != nil {
		return queue.DatabaseHealth{}, err
	}
	return queue.DatabaseHealth{
		DBPath:           resp.DBPath,
		DatabaseExists:   resp.DatabaseExists,
		DatabaseReadable: resp.DatabaseReadable,
		SchemaVersion:    resp.SchemaVersion,
		TableExists:      resp.TableExists,
		ColumnsPresent:   resp.ColumnsPresent,
		MissingColumns:   resp.MissingColumns,
		IntegrityCheck:   resp.IntegrityCheck,
		TotalItems:       resp.TotalItems,
		Error:            resp.Error,
	}, nil
}

type storeAccess struct {
	store   *queue.Store
	service *api.QueueService
}

func (a *storeAccess) Stats(ctx context.Context) (map[string]int, error) {
	return a.service.Stats(ctx)
}

func (a *storeAccess) List(ctx context.Context, statuses []string) ([]api.QueueItem, error) {
	var filters []queue.Status
	for _, s := range statuses {
		if parsed, ok := queue.ParseStatus(s); ok {
			filters = append(filters, parsed)
		}
	}
	return a.service.List(ctx, filters...)
}

func (a *storeAccess) Describe(ctx context.Context, id int64) (*api.QueueItem, error) {
	return a.service.Describe(ctx, id)
}

func (a *storeAccess) ClearAll(ctx context.Context) (int64, error) {
	return a.store.Clear(ctx)
}

func (a *storeAccess) ClearCompleted(ctx context.Context) (int64, error) {
	return a.store.ClearCompleted(ctx)
}

func (a *storeAccess) ClearFailed(ctx context.Context) (int64, error) {
	return a.store.ClearFailed(ctx)
}

func (a *storeAccess) ResetStuck(ctx context.Context) (int64, error) {
	return a.store.ResetStuckProcessing(ctx)
}

func (a *storeAccess) RetryAll(ctx context.Context) (int64, error) {
	return a.store.RetryFailed(ctx)
}

func (a *storeAccess) Retry(ctx context.Context, ids []int64) (int64, error) {
	return a.store.RetryFailed(ctx, ids...)
}

// ReviewUpdate mirrors the daemon's review semantics for offline edits: nil
// request fields leave stored values untouched, and Requeue only moves items
// that are actually parked in review.
func (a *storeAccess) ReviewUpdate(ctx context.Context, req ipc.ReviewUpdateRequest) (*api.QueueItem, bool, error) {
	item, err := a.store.GetByID(ctx, req.ID)
	if err != nil {
		return nil, false, fmt.Errorf("load item %d: %w", req.ID, err)
	}
	if item == nil {
		return nil, false, nil
	}
	if item.IsProcessing() {
		return nil, false, services.Wrap(services.ErrValidation, "queueaccess", "review update", fmt.Sprintf("item %d is %s and cannot be edited while processing", req.ID, item.Status), nil)
	}

	changed := false
	for _, field := range []struct {
		dst *string
		src *string
	}{
		{&item.CompanyName, req.CompanyName},
		{&item.InvoiceNumber, req.InvoiceNumber},
		{&item.GSTNumber, req.GSTNumber},
		{&item.Amount, req.Amount},
		{&item.InvoiceDate, req.InvoiceDate},
	} {
		if field.src != nil {
			*field.dst = strings.TrimSpace(*field.src)
			changed = true
		}
	}

	requeued := false
	if req.Requeue {
		if item.Status != queue.StatusReview {
			return nil, false, services.Wrap(services.ErrValidation, "queueaccess", "review update", fmt.Sprintf("item %d is %s, only review items can be requeued", req.ID, item.Status), nil)
		}
		item.Status = queue.StatusReadyToFile
		item.NeedsReview = false
		item.ReviewReason = ""
		item.ErrorMessage = ""
		item.SetProgress("Review resolved", "Corrections applied, ready to file", 0)
		requeued = true
	}

	if changed || requeued {
		if err := a.store.Update(ctx, item); err != nil {
			return nil, false, fmt.Errorf("persist review update for item %d: %w", req.ID, err)
		}
	}

	view := api.FromQueueItem(item)
	return &view, requeued, nil
}

func (a *storeAccess) Health(ctx context.Context) (queue.HealthSummary, error) {
	return a.store.Health(ctx)
}

func (a *storeAccess) DatabaseHealth(ctx context.Context) (queue.DatabaseHealth, error) {
	return a.store.CheckHealth(ctx)
}
