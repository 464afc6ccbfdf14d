// internal/workers/scoring/calculate-tidescore/config.go
package calculatetidescore

import (
	"time"

	"tidescore-workers/internal/applicant"
)

type Config struct {
	FlagConvention     applicant.FlagConvention
	IncludeSuggestions bool
	CacheTTL           time.Duration
	Timeout            time.Duration
}

func LoadConfig() *Config {
	return &Config{
		FlagConvention:     applicant.ConventionYesNo,
		IncludeSuggestions: true,
		CacheTTL:           time.Hour,
		Timeout:            10 * time.Second,
	}
}
