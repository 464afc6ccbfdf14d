// internal/workers/reporting/score-statistics/models.go
package scorestatistics

type Input struct {
	Refresh bool `json:"refresh,omitempty"`
}

type Output struct {
	TotalApplications    int            `json:"totalApplications"`
	VerifiedApplications int            `json:"verifiedApplications"`
	StatusCounts         map[string]int `json:"statusCounts"`
	AverageScore         float64        `json:"averageScore"`
	RiskDistribution     map[string]int `json:"riskDistribution"`
	GeneratedAt          string         `json:"generatedAt"` // ISO 8601
	Cached               bool           `json:"cached"`
}

// UnknownRisk collects tiers that are missing or unrecognised.
const UnknownRisk = "Unknown"
