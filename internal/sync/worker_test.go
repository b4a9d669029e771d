package sync

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dvthanh/garahub-backend/pkg/config"
	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	"github.com/dvthanh/garahub-backend/pkg/logger"
	"github.com/dvthanh/garahub-backend/pkg/metrics"
)

type stubStore struct {
	events []models.OutboxEvent

	published []uuid.UUID
	failed    []uuid.UUID
	exhausted []uuid.UUID
}

func (s *stubStore) FetchUnpublished(limit int) ([]models.OutboxEvent, error) {
	if limit > len(s.events) {
		limit = len(s.events)
	}
	return s.events[:limit], nil
}

func (s *stubStore) CountPending() (int64, error) {
	return int64(len(s.events) - len(s.published)), nil
}

func (s *stubStore) MarkPublished(id uuid.UUID) error {
	s.published = append(s.published, id)
	return nil
}

func (s *stubStore) MarkFailed(id uuid.UUID, err error) error {
	s.failed = append(s.failed, id)
	return nil
}

func (s *stubStore) MarkExhausted(id uuid.UUID, err error) error {
	s.exhausted = append(s.exhausted, id)
	return nil
}

type stubPublisher struct {
	failing   map[uuid.UUID]error
	delivered []models.OutboxEvent
}

func (p *stubPublisher) Publish(ctx context.Context, event models.OutboxEvent) error {
	if err, ok := p.failing[event.ID]; ok {
		return err
	}
	p.delivered = append(p.delivered, event)
	return nil
}

func testConfig() config.SyncConfig {
	return config.SyncConfig{
		BatchSize:      10,
		PollInterval:   time.Second,
		MaxAttempts:    3,
		PublishTimeout: time.Second,
	}
}

func newTestWorker(t *testing.T, store *stubStore, publisher *stubPublisher) *Worker {
	t.Helper()
	worker, err := NewWorker(
		store,
		publisher,
		metrics.NewSyncMetrics(prometheus.NewRegistry()),
		logger.New(logger.Options{Output: io.Discard}),
		testConfig(),
	)
	if err != nil {
		t.Fatalf("unexpected worker error: %v", err)
	}
	return worker
}

func event(attempts int) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventEntityChanged,
		AggregateType: enums.AggregateCustomer,
		AggregateID:   uuid.New(),
		Payload:       []byte(`{"version":1}`),
		AttemptCount:  attempts,
	}
}

func TestDrainOncePublishesBatch(t *testing.T) {
	store := &stubStore{events: []models.OutboxEvent{event(0), event(0)}}
	publisher := &stubPublisher{}
	worker := newTestWorker(t, store, publisher)

	published, err := worker.DrainOnce(context.Background())
	if err != nil {
		t.Fatalf("DrainOnce error: %v", err)
	}
	if published != 2 {
		t.Fatalf("expected 2 published, got %d", published)
	}
	if len(store.published) != 2 || len(publisher.delivered) != 2 {
		t.Fatalf("expected all events delivered and marked")
	}
}

func TestDrainOnceRetriesFailures(t *testing.T) {
	bad := event(0)
	good := event(0)
	store := &stubStore{events: []models.OutboxEvent{bad, good}}
	publisher := &stubPublisher{failing: map[uuid.UUID]error{bad.ID: errors.New("mirror down")}}
	worker := newTestWorker(t, store, publisher)

	published, err := worker.DrainOnce(context.Background())
	if err != nil {
		t.Fatalf("DrainOnce error: %v", err)
	}
	if published != 1 {
		t.Fatalf("expected 1 published, got %d", published)
	}
	if len(store.failed) != 1 || store.failed[0] != bad.ID {
		t.Fatalf("expected the failing event marked for retry")
	}
	if len(store.exhausted) != 0 {
		t.Fatalf("first failure must not exhaust")
	}
}

func TestDrainOnceParksExhaustedEvents(t *testing.T) {
	poison := event(2)
	store := &stubStore{events: []models.OutboxEvent{poison}}
	publisher := &stubPublisher{failing: map[uuid.UUID]error{poison.ID: errors.New("bad payload")}}
	worker := newTestWorker(t, store, publisher)

	if _, err := worker.DrainOnce(context.Background()); err != nil {
		t.Fatalf("DrainOnce error: %v", err)
	}
	if len(store.exhausted) != 1 || store.exhausted[0] != poison.ID {
		t.Fatalf("expected the poison event parked")
	}
	if len(store.failed) != 0 {
		t.Fatalf("exhausted events must not also be marked failed")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := &stubStore{}
	worker := newTestWorker(t, store, &stubPublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := worker.Run(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
