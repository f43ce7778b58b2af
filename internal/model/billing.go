package model

import "github.com/google/uuid"

// BillingAccountRef points at a billing account owned by the billing
// service. The patient service holds no further lifecycle authority over it.
type BillingAccountRef struct {
	AccountID string    `json:"account_id"`
	PatientID uuid.UUID `json:"patient_id"`
	Status    string    `json:"status"`
}
