// internal/tidescore/risk.go
package tidescore

// RiskLevel is the discrete tier derived from a scaled score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
)

// Inclusive lower bounds of each tier.
const (
	LowRiskThreshold    = 650
	MediumRiskThreshold = 450
	HighRiskThreshold   = 250
)

// ClassifyRisk maps a scaled score to its tier, checking the best tier first.
func ClassifyRisk(scaled int) RiskLevel {
	switch {
	case scaled >= LowRiskThreshold:
		return RiskLow
	case scaled >= MediumRiskThreshold:
		return RiskMedium
	case scaled >= HighRiskThreshold:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// RiskLevels lists every tier from best to worst.
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskVeryHigh}
}

// Valid reports whether l is one of the known tiers.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh, RiskVeryHigh:
		return true
	}
	return false
}
