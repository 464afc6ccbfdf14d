// internal/workers/reporting/index-score-report/config.go
package indexscorereport

import "time"

type Config struct {
	IndexName string
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		IndexName: "tidescore-reports",
		Timeout:   10 * time.Second,
	}
}
