package model

import (
	"time"

	"github.com/google/uuid"
)

type BillingStatus string

const (
	// BillingStatusPending marks a patient persisted before the billing
	// account RPC has confirmed. Rows stuck in pending indicate the billing
	// call failed and the record needs reconciliation.
	BillingStatusPending BillingStatus = "pending"
	BillingStatusActive  BillingStatus = "active"
)

type Patient struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	Name           string        `db:"name" json:"name"`
	Email          string        `db:"email" json:"email"`
	Address        string        `db:"address" json:"address"`
	DateOfBirth    time.Time     `db:"date_of_birth" json:"date_of_birth"`
	RegisteredDate time.Time     `db:"registered_date" json:"registered_date"`
	BillingStatus  BillingStatus `db:"billing_status" json:"billing_status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

type CreatePatientRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Address     string `json:"address" binding:"required"`
	DateOfBirth string `json:"date_of_birth" binding:"required,dateonly"`
}

type UpdatePatientRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Address     string `json:"address" binding:"required"`
	DateOfBirth string `json:"date_of_birth" binding:"required,dateonly"`
}
