// internal/models/audit.go
package models

import "time"

// Audit actions.
const (
	AuditScoreRecorded = "score_recorded"
	AuditScoreIndexed  = "score_indexed"
	AuditVerified      = "application_verified"
)

type AuditLog struct {
	ID            string                 `json:"id" db:"id"`
	ApplicationID string                 `json:"applicationId" db:"application_id"`
	Action        string                 `json:"action" db:"action"`
	Actor         string                 `json:"actor" db:"actor"`
	Details       map[string]interface{} `json:"details,omitempty" db:"details"`
	CreatedAt     time.Time              `json:"createdAt" db:"created_at"`
}
