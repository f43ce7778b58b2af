package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/patient-api/internal/model"
	"github.com/jwalitptl/patient-api/internal/repository"
	apperrors "github.com/jwalitptl/patient-api/pkg/errors"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (id, name, email, address, date_of_birth, registered_date, billing_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		patient.Email,
		patient.Address,
		patient.DateOfBirth,
		patient.RegisteredDate,
		patient.BillingStatus,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("a patient with email %s already exists", patient.Email), err)
		}
		return apperrors.Internal(fmt.Errorf("failed to create patient: %w", err))
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get patient: %w", err))
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET name = $1, email = $2, address = $3, date_of_birth = $4, updated_at = $5
		WHERE id = $6
	`
	patient.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.Name,
		patient.Email,
		patient.Address,
		patient.DateOfBirth,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("a patient with email %s already exists", patient.Email), err)
		}
		return apperrors.Internal(fmt.Errorf("failed to update patient: %w", err))
	}
	return nil
}

// Delete removes a patient row. Deleting an absent id is a no-op success.
func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM patients WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return apperrors.Internal(fmt.Errorf("failed to delete patient: %w", err))
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `SELECT * FROM patients ORDER BY registered_date, id`
	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list patients: %w", err))
	}
	return patients, nil
}

func (r *patientRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM patients WHERE email = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, apperrors.Internal(fmt.Errorf("failed to check email: %w", err))
	}
	return exists, nil
}

func (r *patientRepository) ExistsByEmailExcluding(ctx context.Context, email string, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM patients WHERE email = $1 AND id <> $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email, id); err != nil {
		return false, apperrors.Internal(fmt.Errorf("failed to check email: %w", err))
	}
	return exists, nil
}

func (r *patientRepository) UpdateBillingStatus(ctx context.Context, id uuid.UUID, status model.BillingStatus) error {
	query := `UPDATE patients SET billing_status = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, string(status), time.Now(), id); err != nil {
		return apperrors.Internal(fmt.Errorf("failed to update billing status: %w", err))
	}
	return nil
}
