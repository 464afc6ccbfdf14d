// internal/workers/scoring/verify-application/models.go
package verifyapplication

import "tidescore-workers/internal/tidescore"

type DocumentReview struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

type Input struct {
	ApplicationID           string                    `json:"applicationId"`
	AdminEmail              string                    `json:"adminEmail"`
	OverallStatus           string                    `json:"overallStatus"`
	DocumentReviews         map[string]DocumentReview `json:"documentReviews,omitempty"`
	EducationVerified       bool                      `json:"educationVerified"`
	G1Verified              bool                      `json:"g1Verified"`
	G2Verified              bool                      `json:"g2Verified"`
	G1RelationshipConfirmed string                    `json:"g1RelationshipConfirmed,omitempty"`
	G2RelationshipConfirmed string                    `json:"g2RelationshipConfirmed,omitempty"`
	Notes                   string                    `json:"notes,omitempty"`
}

type Output struct {
	ApplicationID      string            `json:"applicationId"`
	VerificationStatus string            `json:"verificationStatus"`
	Rescored           bool              `json:"rescored"`
	ScaledScore        *int              `json:"scaledScore,omitempty"`
	RiskLevel          string            `json:"riskLevel,omitempty"`
	ScoreReport        *tidescore.Report `json:"scoreReport,omitempty"`
	DocumentsReviewed  []string          `json:"documentsReviewed"`
	VerifiedAt         string            `json:"verifiedAt"` // ISO 8601
}
