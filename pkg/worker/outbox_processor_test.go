package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-api/internal/model"
	"github.com/jwalitptl/patient-api/pkg/logger"
	"github.com/jwalitptl/patient-api/pkg/messaging"
	"github.com/jwalitptl/patient-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "outbox_worker")

type fakeOutboxRepository struct {
	pending        []*model.OutboxEvent
	statuses       map[uuid.UUID]model.OutboxStatus
	deletedBefore  []time.Time
	deletedPerCall int64
}

func newFakeOutboxRepository(events ...*model.OutboxEvent) *fakeOutboxRepository {
	return &fakeOutboxRepository{
		pending:  events,
		statuses: make(map[uuid.UUID]model.OutboxStatus),
	}
}

func (f *fakeOutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	f.pending = append(f.pending, event)
	return nil
}

func (f *fakeOutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error {
	f.statuses[id] = status
	return nil
}

func (f *fakeOutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	f.deletedBefore = append(f.deletedBefore, before)
	return f.deletedPerCall, nil
}

type fakeBroker struct {
	published []*messaging.Message
	topics    []string
	err       error
}

func (f *fakeBroker) Publish(ctx context.Context, topic string, message *messaging.Message) error {
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	f.published = append(f.published, message)
	return nil
}

func (f *fakeBroker) Close() error { return nil }

func testConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  10 * time.Millisecond,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}
}

func outboxEvent(t *testing.T, eventType string) *model.OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(&model.PatientEvent{ID: uuid.New(), Name: "Jane"})
	require.NoError(t, err)
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		EventKey:  uuid.New().String(),
		Payload:   payload,
		Status:    string(model.OutboxStatusPending),
		CreatedAt: time.Now(),
	}
}

func TestProcessEventsPublishesAndMarksProcessed(t *testing.T) {
	evt := outboxEvent(t, model.EventPatientCreated)
	repo := newFakeOutboxRepository(evt)
	broker := &fakeBroker{}

	p := NewOutboxProcessor(repo, broker, testConfig(), logger.NewLogger(nil), testMetrics)

	require.NoError(t, p.processEvents(context.Background()))

	require.Len(t, broker.published, 1)
	assert.Equal(t, PatientEventsTopic, broker.topics[0])
	assert.Equal(t, model.EventPatientCreated, broker.published[0].Type)
	assert.Equal(t, evt.EventKey, broker.published[0].Key)
	assert.Equal(t, model.OutboxStatusProcessed, repo.statuses[evt.ID])
}

func TestProcessEventsMarksFailedAfterRetries(t *testing.T) {
	evt := outboxEvent(t, model.EventPatientUpdated)
	repo := newFakeOutboxRepository(evt)
	broker := &fakeBroker{err: errors.New("broker down")}

	p := NewOutboxProcessor(repo, broker, testConfig(), logger.NewLogger(nil), testMetrics)

	// processEvents itself succeeds; the per-event failure is recorded on
	// the row.
	require.NoError(t, p.processEvents(context.Background()))
	assert.Equal(t, model.OutboxStatusFailed, repo.statuses[evt.ID])
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	assert.Panics(t, func() {
		NewOutboxProcessor(newFakeOutboxRepository(), &fakeBroker{}, OutboxProcessorConfig{}, logger.NewLogger(nil), testMetrics)
	})
}

func TestCleanupProcessedUsesRetentionCutoff(t *testing.T) {
	repo := newFakeOutboxRepository()
	repo.deletedPerCall = 3

	cfg := testConfig()
	cfg.RetentionPeriod = 24 * time.Hour
	cfg.CleanupInterval = time.Hour

	p := NewOutboxProcessor(repo, &fakeBroker{}, cfg, logger.NewLogger(nil), testMetrics)

	before := time.Now().Add(-cfg.RetentionPeriod)
	p.cleanupProcessed(context.Background())
	after := time.Now().Add(-cfg.RetentionPeriod)

	require.Len(t, repo.deletedBefore, 1)
	cutoff := repo.deletedBefore[0]
	assert.False(t, cutoff.Before(before))
	assert.False(t, cutoff.After(after))
}

func TestStartRunsRetentionSweep(t *testing.T) {
	repo := newFakeOutboxRepository()

	cfg := testConfig()
	cfg.RetentionPeriod = time.Hour
	cfg.CleanupInterval = 10 * time.Millisecond

	p := NewOutboxProcessor(repo, &fakeBroker{}, cfg, logger.NewLogger(nil), testMetrics)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	assert.NotEmpty(t, repo.deletedBefore)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	repo := newFakeOutboxRepository()
	p := NewOutboxProcessor(repo, &fakeBroker{}, testConfig(), logger.NewLogger(nil), testMetrics)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor did not stop after context cancellation")
	}
}
