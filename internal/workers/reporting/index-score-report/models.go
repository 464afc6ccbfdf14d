// internal/workers/reporting/index-score-report/models.go
package indexscorereport

import "tidescore-workers/internal/tidescore"

type Input struct {
	ApplicationID string           `json:"applicationId"`
	ApplicantName string           `json:"applicantName,omitempty"`
	ScoreReport   tidescore.Report `json:"scoreReport"`
}

type Output struct {
	DocumentID string `json:"documentId"`
	Index      string `json:"index"`
	Result     string `json:"result"` // "created" or "updated"
	Version    int64  `json:"version"`
	IndexedAt  string `json:"indexedAt"` // ISO 8601
}

// ScoreDocument is the searchable form of a report.
type ScoreDocument struct {
	ApplicationID string         `json:"applicationId"`
	ApplicantName string         `json:"applicantName,omitempty"`
	ScaledScore   int            `json:"scaledScore"`
	RiskLevel     string         `json:"riskLevel"`
	Breakdown     map[string]int `json:"breakdown"`
	Suggestions   []string       `json:"suggestions"`
	IndexedAt     string         `json:"indexedAt"`
}

type indexResponse struct {
	ID      string `json:"_id"`
	Result  string `json:"result"`
	Version int64  `json:"_version"`
}
