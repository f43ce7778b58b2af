package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/patient-api/internal/billing"
	"github.com/jwalitptl/patient-api/internal/model"
	"github.com/jwalitptl/patient-api/internal/repository"
	"github.com/jwalitptl/patient-api/internal/service/event"
	apperrors "github.com/jwalitptl/patient-api/pkg/errors"
)

type PatientService interface {
	CreatePatient(ctx context.Context, patient *model.Patient) (*model.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, update *model.Patient) (*model.Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
	ListPatients(ctx context.Context) ([]*model.Patient, error)
}

// Service sequences persistence, the billing RPC and event emission for
// patient lifecycle operations.
type Service struct {
	repo       repository.PatientRepository
	billingSvc billing.Client
	events     event.Emitter
}

func NewService(repo repository.PatientRepository, billingSvc billing.Client, events event.Emitter) *Service {
	return &Service{
		repo:       repo,
		billingSvc: billingSvc,
		events:     events,
	}
}

// CreatePatient walks the creation workflow: uniqueness check, persist,
// billing account RPC, event emission. The billing call is synchronous and
// its failure aborts the request after the row is already persisted; such
// rows keep billing_status=pending so they can be reconciled instead of
// silently orphaned. Event emission is best-effort and never fails the
// request.
func (s *Service) CreatePatient(ctx context.Context, patient *model.Patient) (*model.Patient, error) {
	exists, err := s.repo.ExistsByEmail(ctx, patient.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict(fmt.Sprintf("a patient with email %s already exists", patient.Email), nil)
	}

	patient.ID = uuid.New()
	patient.RegisteredDate = time.Now()
	patient.BillingStatus = model.BillingStatusPending

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, err
	}

	ref, err := s.billingSvc.CreateBillingAccount(ctx, patient.ID, patient.Email, patient.Name)
	if err != nil {
		log.Warn().
			Err(err).
			Str("patient_id", patient.ID.String()).
			Msg("patient persisted without billing account")
		return nil, err
	}

	if err := s.repo.UpdateBillingStatus(ctx, patient.ID, model.BillingStatusActive); err != nil {
		// The billing account exists; a stale pending flag is recoverable
		// and not worth failing the creation over.
		log.Error().
			Err(err).
			Str("patient_id", patient.ID.String()).
			Str("account_id", ref.AccountID).
			Msg("failed to mark billing status active")
	} else {
		patient.BillingStatus = model.BillingStatusActive
	}

	if err := s.events.EmitPatientCreated(ctx, patient); err != nil {
		log.Error().
			Err(err).
			Str("patient_id", patient.ID.String()).
			Msg("failed to queue patient created event")
	}

	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

// UpdatePatient mutates name, email, address and date of birth in place.
// The registration date is immutable. A patient may keep its own email
// across an update without tripping the uniqueness check.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, update *model.Patient) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmailExcluding(ctx, update.Email, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict(fmt.Sprintf("a patient with email %s already exists", update.Email), nil)
	}

	patient.Name = update.Name
	patient.Email = update.Email
	patient.Address = update.Address
	patient.DateOfBirth = update.DateOfBirth

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, err
	}

	if err := s.events.EmitPatientUpdated(ctx, patient); err != nil {
		log.Error().
			Err(err).
			Str("patient_id", patient.ID.String()).
			Msg("failed to queue patient updated event")
	}

	return patient, nil
}

// DeletePatient removes the record by id. Deleting an absent id succeeds
// as a no-op.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.events.EmitPatientDeleted(ctx, id); err != nil {
		log.Error().
			Err(err).
			Str("patient_id", id.String()).
			Msg("failed to queue patient deleted event")
	}

	return nil
}

func (s *Service) ListPatients(ctx context.Context) ([]*model.Patient, error) {
	return s.repo.List(ctx)
}
