package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-api/internal/model"
	"github.com/jwalitptl/patient-api/internal/repository"
)

// Emitter queues patient lifecycle events for asynchronous dispatch. The
// request path only writes an outbox row; a separate worker forwards rows
// to the message broker, so emission never blocks on broker round trips.
type Emitter interface {
	EmitPatientCreated(ctx context.Context, patient *model.Patient) error
	EmitPatientUpdated(ctx context.Context, patient *model.Patient) error
	EmitPatientDeleted(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	outboxRepo repository.OutboxRepository
}

func NewService(outboxRepo repository.OutboxRepository) *Service {
	return &Service{outboxRepo: outboxRepo}
}

func (s *Service) EmitPatientCreated(ctx context.Context, patient *model.Patient) error {
	return s.emit(ctx, model.EventPatientCreated, patient.ID, &model.PatientEvent{
		ID:      patient.ID,
		Name:    patient.Name,
		Email:   patient.Email,
		Address: patient.Address,
	})
}

func (s *Service) EmitPatientUpdated(ctx context.Context, patient *model.Patient) error {
	return s.emit(ctx, model.EventPatientUpdated, patient.ID, &model.PatientEvent{
		ID:      patient.ID,
		Name:    patient.Name,
		Email:   patient.Email,
		Address: patient.Address,
	})
}

func (s *Service) EmitPatientDeleted(ctx context.Context, id uuid.UUID) error {
	return s.emit(ctx, model.EventPatientDeleted, id, &model.PatientEvent{ID: id})
}

// emit keys every event by patient id so brokers that partition by key keep
// per-patient ordering.
func (s *Service) emit(ctx context.Context, eventType string, key uuid.UUID, payload *model.PatientEvent) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return s.outboxRepo.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		EventKey:  key.String(),
		Payload:   data,
	})
}
