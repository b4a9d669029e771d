package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dvthanh/garahub-backend/pkg/config"
	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/logger"
	"github.com/dvthanh/garahub-backend/pkg/metrics"
)

const workerName = "mirror"

// outboxStore is the slice of the outbox repository the worker drains.
type outboxStore interface {
	FetchUnpublished(limit int) ([]models.OutboxEvent, error)
	CountPending() (int64, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, err error) error
	MarkExhausted(id uuid.UUID, err error) error
}

// Worker drains the transactional outbox into the remote mirror. Sync is
// best effort: failures are retried up to the attempt cap and never touch
// the local workflow path.
type Worker struct {
	store     outboxStore
	publisher Publisher
	metrics   *metrics.SyncMetrics
	logg      *logger.Logger
	cfg       config.SyncConfig
}

// NewWorker builds a sync worker with the required dependencies.
func NewWorker(store outboxStore, publisher Publisher, syncMetrics *metrics.SyncMetrics, logg *logger.Logger, cfg config.SyncConfig) (*Worker, error) {
	if store == nil {
		return nil, fmt.Errorf("outbox store required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}
	if cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("max attempts must be positive")
	}
	return &Worker{store: store, publisher: publisher, metrics: syncMetrics, logg: logg, cfg: cfg}, nil
}

// Run polls the outbox until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.logg.Info(w.logg.WithFields(ctx, map[string]any{
		"batch_size":    w.cfg.BatchSize,
		"poll_interval": w.cfg.PollInterval.String(),
	}), "sync worker started")

	for {
		if _, err := w.DrainOnce(ctx); err != nil {
			w.logg.Error(ctx, "outbox drain failed", err)
		}
		select {
		case <-ctx.Done():
			w.logg.Info(ctx, "sync worker stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// DrainOnce publishes one batch of unpublished events and returns how many
// were delivered. Publish failures are retried on a later poll; only
// bookkeeping errors bubble up, combined so one bad row does not hide the
// rest of the batch.
func (w *Worker) DrainOnce(ctx context.Context) (int, error) {
	start := time.Now()
	events, err := w.store.FetchUnpublished(w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	var errs error
	for _, event := range events {
		if err := w.publishOne(ctx, event); err != nil {
			w.metrics.IncFailed(string(event.AggregateType))
			errs = multierr.Append(errs, w.handleFailure(ctx, event, err))
			continue
		}
		if err := w.store.MarkPublished(event.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("mark published %s: %w", event.ID, err))
			continue
		}
		w.metrics.IncPublished(string(event.AggregateType))
		published++
	}

	if pending, err := w.store.CountPending(); err == nil {
		w.metrics.SetPending(pending)
	}
	w.metrics.ObserveBatch(workerName, time.Since(start))
	return published, errs
}

func (w *Worker) publishOne(ctx context.Context, event models.OutboxEvent) error {
	pubCtx := ctx
	if w.cfg.PublishTimeout > 0 {
		var cancel context.CancelFunc
		pubCtx, cancel = context.WithTimeout(ctx, w.cfg.PublishTimeout)
		defer cancel()
	}
	return w.publisher.Publish(pubCtx, event)
}

// handleFailure retries until the attempt cap, then parks the event so one
// poison row cannot wedge the whole queue. The returned error covers
// bookkeeping only; the publish failure itself is logged and retried.
func (w *Worker) handleFailure(ctx context.Context, event models.OutboxEvent, pubErr error) error {
	logCtx := w.logg.WithFields(ctx, map[string]any{
		"event_id":      event.ID.String(),
		"event_type":    string(event.EventType),
		"attempt_count": event.AttemptCount + 1,
	})
	if event.AttemptCount+1 >= w.cfg.MaxAttempts {
		if err := w.store.MarkExhausted(event.ID, pubErr); err != nil {
			w.logg.Error(logCtx, "marking event exhausted failed", err)
			return fmt.Errorf("mark exhausted %s: %w", event.ID, err)
		}
		w.logg.Error(logCtx, "outbox event exhausted retries", pubErr)
		return nil
	}
	if err := w.store.MarkFailed(event.ID, pubErr); err != nil {
		w.logg.Error(logCtx, "marking event failed errored", err)
		return fmt.Errorf("mark failed %s: %w", event.ID, err)
	}
	w.logg.Warn(logCtx, "outbox publish failed, will retry")
	return nil
}
