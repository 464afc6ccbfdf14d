// internal/workers/scoring/persist-score-report/models.go
package persistscorereport

import "tidescore-workers/internal/tidescore"

type Input struct {
	ApplicationID string           `json:"applicationId"`
	ScoreReport   tidescore.Report `json:"scoreReport"`
	RecordedBy    string           `json:"recordedBy,omitempty"`
}

type Output struct {
	ApplicationID string `json:"applicationId"`
	Persisted     bool   `json:"persisted"`
	UpdatedAt     string `json:"updatedAt"` // ISO 8601
}
