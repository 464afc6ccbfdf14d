// internal/workers/scoring/calculate-tidescore/models.go
package calculatetidescore

import "tidescore-workers/internal/tidescore"

type Input struct {
	ApplicationID      string                 `json:"applicationId"`
	ApplicantData      map[string]interface{} `json:"applicantData"`
	VerificationData   map[string]interface{} `json:"verificationData,omitempty"`
	IncludeSuggestions *bool                  `json:"includeSuggestions,omitempty"`
	FlagConvention     string                 `json:"flagConvention,omitempty"`
}

type Output struct {
	ApplicationID string           `json:"applicationId"`
	ScaledScore   int              `json:"scaledScore"`
	RiskLevel     string           `json:"riskLevel"`
	ScoreReport   tidescore.Report `json:"scoreReport"`
	Fingerprint   string           `json:"fingerprint"`
	Cached        bool             `json:"cached"`
}
