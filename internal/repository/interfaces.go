package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-api/internal/model"
)

// All repository interfaces in one file
type (
	// PatientRepository owns patient persistence. The email uniqueness
	// checks are the fast path for a friendly error; the unique constraint
	// on patients.email is the authoritative guard against races.
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Patient, error)
		ExistsByEmail(ctx context.Context, email string) (bool, error)
		ExistsByEmailExcluding(ctx context.Context, email string, id uuid.UUID) (bool, error)
		UpdateBillingStatus(ctx context.Context, id uuid.UUID, status model.BillingStatus) error
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByEmail(ctx context.Context, email string) (*model.User, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
