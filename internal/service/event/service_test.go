package event

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
)

type mockOutboxRepository struct {
	CreateFunc func(ctx context.Context, event *model.OutboxEvent) error
	created    []*model.OutboxEvent
}

func (m *mockOutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	m.created = append(m.created, event)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return nil
}

func (m *mockOutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (m *mockOutboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error {
	return nil
}

func (m *mockOutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func TestEmitPatientCreated(t *testing.T) {
	repo := &mockOutboxRepository{}
	svc := NewService(repo)

	patient := &model.Patient{
		ID:      uuid.New(),
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Address: "12 High St",
	}

	err := svc.EmitPatientCreated(context.Background(), patient)
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	evt := repo.created[0]
	assert.Equal(t, model.EventPatientCreated, evt.EventType)
	assert.Equal(t, patient.ID.String(), evt.EventKey)

	var payload model.PatientEvent
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, patient.ID, payload.ID)
	assert.Equal(t, "Jane Doe", payload.Name)
	assert.Equal(t, "jane@example.com", payload.Email)
	assert.Equal(t, "12 High St", payload.Address)
}

func TestEmitPatientDeletedCarriesOnlyID(t *testing.T) {
	repo := &mockOutboxRepository{}
	svc := NewService(repo)

	id := uuid.New()
	require.NoError(t, svc.EmitPatientDeleted(context.Background(), id))
	require.Len(t, repo.created, 1)

	evt := repo.created[0]
	assert.Equal(t, model.EventPatientDeleted, evt.EventType)
	assert.Equal(t, id.String(), evt.EventKey)

	var payload model.PatientEvent
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, id, payload.ID)
	assert.Empty(t, payload.Email)
}

func TestEmitPropagatesOutboxError(t *testing.T) {
	repo := &mockOutboxRepository{
		CreateFunc: func(ctx context.Context, event *model.OutboxEvent) error {
			return errors.New("outbox unavailable")
		},
	}
	svc := NewService(repo)

	err := svc.EmitPatientUpdated(context.Background(), &model.Patient{ID: uuid.New()})
	assert.Error(t, err)
}
