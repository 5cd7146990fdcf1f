package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the review state of a pharmacy application
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// IsValid reports whether s is a known verification status
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	default:
		return false
	}
}

// PharmacyVerification is a pharmacy's application for the pharmacist role.
// Approval grants the role; rejection only records the reason.
type PharmacyVerification struct {
	ID                uuid.UUID          `json:"id" db:"id"`
	UserID            uuid.UUID          `json:"userId" db:"user_id"`
	PharmacyName      string             `json:"pharmacyName" db:"pharmacy_name"`
	LicenseID         string             `json:"licenseId" db:"license_id"`
	BusinessDocuments StringList         `json:"businessDocuments" db:"business_documents"`
	ContactName       string             `json:"contactName" db:"contact_name"`
	ContactEmail      string             `json:"contactEmail" db:"contact_email"`
	ContactPhone      *string            `json:"contactPhone,omitempty" db:"contact_phone"`
	Status            VerificationStatus `json:"status" db:"status"`
	SubmittedAt       time.Time          `json:"submittedAt" db:"submitted_at"`
	ReviewedAt        *time.Time         `json:"reviewedAt,omitempty" db:"reviewed_at"`
	RejectionReason   *string            `json:"rejectionReason,omitempty" db:"rejection_reason"`
	ReviewedBy        *uuid.UUID         `json:"reviewedBy,omitempty" db:"reviewed_by"`
}
