// internal/models/application.go
package models

import "time"

// Application statuses as set by the admin verification screen.
const (
	StatusPending     = "Pending"
	StatusUnderReview = "Under Review"
	StatusVerified    = "Verified"
	StatusRejected    = "Rejected"
)

// Document types an admin reviews.
const (
	DocumentEmploymentProof = "employment_proof"
	DocumentAirtimeProof    = "airtime_proof"
	DocumentBankStatement   = "bank_statement"
)

// Document review outcomes.
const (
	DocumentPending    = "Pending"
	DocumentVerified   = "Verified"
	DocumentRejected   = "Rejected"
	DocumentFraudulent = "Fraudulent"
)

// Application is a row of the applications table.
type Application struct {
	ID                 string                 `json:"id" db:"id"`
	UserID             string                 `json:"userId" db:"user_id"`
	UserEmail          string                 `json:"userEmail" db:"user_email"`
	ApplicantData      map[string]interface{} `json:"applicantData" db:"applicant_data"`
	VerificationStatus string                 `json:"verificationStatus" db:"verification_status"`
	AdminVerifiedData  map[string]interface{} `json:"adminVerifiedData,omitempty" db:"admin_verified_data"`
	ScoreResult        map[string]interface{} `json:"scoreResult,omitempty" db:"score_result"`
	ScaledScore        *int                   `json:"scaledScore,omitempty" db:"scaled_score"`
	RiskLevel          *string                `json:"riskLevel,omitempty" db:"risk_level"`
	VerifiedAt         *time.Time             `json:"verifiedAt,omitempty" db:"verified_at"`
	VerifiedBy         *string                `json:"verifiedBy,omitempty" db:"verified_by"`
	CreatedAt          time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time              `json:"updatedAt" db:"updated_at"`
}

// ApplicationFile tracks the review state of one uploaded document.
type ApplicationFile struct {
	ApplicationID      string    `json:"applicationId" db:"application_id"`
	FileType           string    `json:"fileType" db:"file_type"`
	Filename           string    `json:"filename" db:"filename"`
	VerificationStatus string    `json:"verificationStatus" db:"verification_status"`
	AdminNotes         string    `json:"adminNotes,omitempty" db:"admin_notes"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

// VerificationHistory is an append-only record of admin actions.
type VerificationHistory struct {
	ID            string    `json:"id" db:"id"`
	ApplicationID string    `json:"applicationId" db:"application_id"`
	AdminEmail    string    `json:"adminEmail" db:"admin_email"`
	Action        string    `json:"action" db:"action"`
	FieldName     *string   `json:"fieldName,omitempty" db:"field_name"`
	OldValue      *string   `json:"oldValue,omitempty" db:"old_value"`
	NewValue      *string   `json:"newValue,omitempty" db:"new_value"`
	Notes         *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// IsDocumentType reports whether t is a reviewable document.
func IsDocumentType(t string) bool {
	switch t {
	case DocumentEmploymentProof, DocumentAirtimeProof, DocumentBankStatement:
		return true
	}
	return false
}
