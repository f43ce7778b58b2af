package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/patient-api/internal/model"
	"github.com/jwalitptl/patient-api/internal/repository"
	"github.com/jwalitptl/patient-api/pkg/logger"
	"github.com/jwalitptl/patient-api/pkg/messaging"
	"github.com/jwalitptl/patient-api/pkg/metrics"
)

// PatientEventsTopic is the single topic patient lifecycle events are
// published to. Messages carry the patient id as key.
const PatientEventsTopic = "patient.events"

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration

	// Processed rows older than RetentionPeriod are pruned every
	// CleanupInterval. Zero values disable the sweep.
	RetentionPeriod time.Duration
	CleanupInterval time.Duration
}

// OutboxProcessor drains pending outbox rows to the message broker. It is
// the asynchronous half of event emission: the request path only inserts
// rows, this loop owns every broker round trip.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		panic("RetryAttempts must be greater than 0")
	}
	if config.RetryDelay <= 0 {
		panic("RetryDelay must be greater than 0")
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	var cleanup <-chan time.Time
	if p.config.RetentionPeriod > 0 && p.config.CleanupInterval > 0 {
		cleanupTicker := time.NewTicker(p.config.CleanupInterval)
		defer cleanupTicker.Stop()
		cleanup = cleanupTicker.C
	}

	p.logger.Info("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processEvents(ctx); err != nil {
				p.logger.Error(err, "failed to process events")
			}
		case <-cleanup:
			p.cleanupProcessed(ctx)
		}
	}
}

// cleanupProcessed prunes processed rows past the retention window so the
// outbox table does not grow without bound.
func (p *OutboxProcessor) cleanupProcessed(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.RetentionPeriod)
	deleted, err := p.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		p.logger.Error(err, "failed to prune processed events")
		return
	}
	if deleted > 0 {
		p.logger.Info("pruned processed events", "count", deleted)
	}
}

func (p *OutboxProcessor) processEvents(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingEvents(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Error(err, "failed to process event",
				"event_id", event.ID.String(),
				"event_type", event.EventType)
			continue
		}
	}

	return nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	msg := &messaging.Message{
		Type:    event.EventType,
		Key:     event.EventKey,
		Payload: event.Payload,
	}

	err := p.retry(event.EventType, func() error {
		return p.broker.Publish(ctx, PatientEventsTopic, msg)
	})

	if err != nil {
		p.metrics.OutboxEventsFailed.Inc()
		errStr := err.Error()
		if updateErr := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusFailed, &errStr); updateErr != nil {
			p.logger.Error(updateErr, "failed to update event status")
		}
		return err
	}

	p.metrics.OutboxEventsProcessed.Inc()
	if err := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil); err != nil {
		p.logger.Error(err, "failed to update event status", "event_id", event.ID.String())
		return err
	}

	return nil
}

func (p *OutboxProcessor) retry(eventType string, fn func() error) error {
	var err error
	for i := 0; i < p.config.RetryAttempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < p.config.RetryAttempts-1 {
			p.metrics.OutboxRetries.WithLabelValues(eventType).Inc()
			time.Sleep(p.config.RetryDelay)
		}
	}
	return err
}
