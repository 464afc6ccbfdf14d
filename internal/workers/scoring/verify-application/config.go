// internal/workers/scoring/verify-application/config.go
package verifyapplication

import (
	"time"

	"tidescore-workers/internal/applicant"
)

type Config struct {
	FlagConvention applicant.FlagConvention
	Timeout        time.Duration
}

func LoadConfig() *Config {
	return &Config{
		FlagConvention: applicant.ConventionYesNo,
		Timeout:        15 * time.Second,
	}
}
