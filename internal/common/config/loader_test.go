// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
app:
  name: tidescore-workers
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: tidescore
    user: ${TIDESCORE_TEST_DB_USER}
  elasticsearch:
    addresses:
      - http://localhost:9200
  redis:
    address: localhost:6379
notifications:
  email:
    from_email: scores@tidescore.example
workers:
  calculate-tidescore:
    enabled: true
  send-score-notification:
    enabled: false
    max_retries: 7
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TIDESCORE_TEST_DB_USER", "scorer")

	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "scorer", cfg.Database.Postgres.User)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.GetURL())
	assert.Equal(t, 8080, cfg.App.HTTPPort)

	assert.Equal(t, "yes_no", cfg.Scoring.FlagConvention)
	assert.True(t, cfg.Scoring.IncludeSuggestions)
	assert.Equal(t, time.Hour, cfg.Scoring.CacheTTLDuration())
	assert.Equal(t, 5*time.Minute, cfg.Scoring.StatsCacheTTLDuration())
	assert.Equal(t, "tidescore-reports", cfg.Scoring.ReportIndex)
	assert.Equal(t, "configs/activity-registry.json", cfg.Scoring.RegistryPath)

	assert.True(t, cfg.Notifications.Email.Enabled)
	assert.Equal(t, []string{"High", "Very High"}, cfg.Notifications.SMS.RiskLevels)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile_WorkerDefaults(t *testing.T) {
	t.Setenv("TIDESCORE_TEST_DB_USER", "scorer")

	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	calc := GetWorkerConfig(cfg, "calculate-tidescore")
	assert.True(t, calc.Enabled)
	assert.Equal(t, 5, calc.MaxJobsActive)
	assert.Equal(t, 30000, calc.Timeout)
	assert.Equal(t, 3, calc.MaxRetries)

	notify := GetWorkerConfig(cfg, "send-score-notification")
	assert.False(t, notify.Enabled)
	assert.Equal(t, 7, notify.MaxRetries)

	assert.False(t, IsWorkerEnabled(cfg, "send-score-notification"))
	assert.True(t, IsWorkerEnabled(cfg, "not-configured"))
	assert.Equal(t, 3, GetWorkerConfig(cfg, "not-configured").MaxRetries)
}

func TestLoadFromFile_Validation(t *testing.T) {
	t.Setenv("TIDESCORE_TEST_DB_USER", "scorer")

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing broker",
			yaml:    "database:\n  postgres:\n    host: h\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name:    "bad flag convention",
			yaml:    minimalYAML + "scoring:\n  flag_convention: radio\n",
			wantErr: "scoring.flag_convention",
		},
		{
			name: "email without sender",
			yaml: `
camunda: {broker_address: "localhost:26500"}
database:
  postgres: {host: localhost, database: tidescore, user: u}
  elasticsearch: {url: "http://localhost:9200"}
  redis: {address: "localhost:6379"}
`,
			wantErr: "notifications.email.from_email is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "tidescore", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=tidescore sslmode=disable", p.GetDSN())
}

func TestElasticsearchConfig_GetAddresses(t *testing.T) {
	assert.Equal(t, []string{"http://a:9200"}, ElasticsearchConfig{URL: "http://a:9200"}.GetAddresses())
	assert.Equal(t, []string{"http://b:9200", "http://c:9200"},
		ElasticsearchConfig{Addresses: []string{"http://b:9200", "http://c:9200"}}.GetAddresses())
	assert.Nil(t, ElasticsearchConfig{}.GetAddresses())
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
