// internal/workers/communication/send-score-notification/config.go
package sendscorenotification

import "time"

type Config struct {
	EmailEnabled  bool
	SMSEnabled    bool
	SMSRiskLevels []string
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled:  true,
		SMSEnabled:    true,
		SMSRiskLevels: []string{"High", "Very High"},
		Timeout:       30 * time.Second,
	}
}
