// internal/workers/scoring/calculate-tidescore/handler_test.go
package calculatetidescore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidescore-workers/internal/applicant"
	"tidescore-workers/internal/common/camunda/jobtest"
	"tidescore-workers/internal/common/errors"
	"tidescore-workers/internal/common/logger"
	"tidescore-workers/internal/common/validation"
	"tidescore-workers/internal/tidescore"
	"tidescore-workers/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	cfg := LoadConfig()
	cfg.CacheTTL = 10 * time.Minute
	return cfg
}

func createTestHandler(t *testing.T, rdb redis.Cmdable, validator *validation.Validator) *Handler {
	return NewHandler(createTestConfig(), rdb, validator, logger.NewTestLogger(t))
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func loadValidator(t *testing.T) *validation.Validator {
	t.Helper()
	reg, err := registry.LoadRegistry(filepath.Join("..", "..", "..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	v, err := validation.NewValidator(reg.InputSchemas())
	require.NoError(t, err)
	return v
}

func fullCreditData() map[string]interface{} {
	return map[string]interface{}{
		"employment_verified":          "Yes",
		"employment_status":            "Employed (Full-time)",
		"residency_verified":           "Yes",
		"education_level":              "Masters",
		"airtime_status":               "Verified",
		"airtime_spend_m1":             "6000",
		"airtime_spend_m2":             "6000",
		"airtime_spend_m3":             "6000",
		"bill_status":                  "Verified",
		"electricity_verified":         "Yes",
		"dstv_verified":                "Yes",
		"internet_verified":            "Yes",
		"water_verified":               "Yes",
		"rent_verified":                "Yes",
		"p2p_status":                   "Verified",
		"num_unique_verified_p2p":      5,
		"p2p_total_value":              60000,
		"p2p_consistent_across_months": "Yes",
		"bank_status":                  "Verified",
		"consistent_deposits_months":   5,
		"avg_monthly_balance":          "12,000",
		"no_negative_flags":            "Yes",
		"g1_verified":                  "Yes",
		"g1_relationship":              "Family Member",
		"g2_verified":                  "Yes",
		"g2_relationship":              "Family Member",
	}
}

func createInput(data map[string]interface{}) *Input {
	return &Input{ApplicationID: "app-001", ApplicantData: data}
}

func boolPtr(b bool) *bool { return &b }

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_FullCredit(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	output, err := handler.Execute(context.Background(), createInput(fullCreditData()))

	require.NoError(t, err)
	assert.Equal(t, "app-001", output.ApplicationID)
	assert.Equal(t, 816, output.ScaledScore)
	assert.Equal(t, "Low", output.RiskLevel)
	assert.Equal(t, 710, output.ScoreReport.Breakdown.FinalRaw)
	assert.Equal(t, []string{tidescore.OverallLow}, output.ScoreReport.Suggestions)
	assert.False(t, output.Cached)
	assert.Len(t, output.Fingerprint, 64)
}

func TestHandler_Execute_EmptyApplicant(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	output, err := handler.Execute(context.Background(), createInput(map[string]interface{}{}))

	require.NoError(t, err)
	assert.Equal(t, 0, output.ScaledScore)
	assert.Equal(t, "Very High", output.RiskLevel)
	assert.Equal(t, -100, output.ScoreReport.Breakdown.TotalPenalties)
	assert.Contains(t, output.ScoreReport.Suggestions, tidescore.OverallVeryHigh)
}

func TestHandler_Execute_VerificationOverlay(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	input := createInput(fullCreditData())
	input.VerificationData = map[string]interface{}{"bank_status": "Unverified"}

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, 0, output.ScoreReport.Breakdown.Bank)
	assert.Equal(t, -30, output.ScoreReport.Breakdown.TotalPenalties)
	assert.Equal(t, 574, output.ScaledScore)
	assert.Equal(t, "Medium", output.RiskLevel)
}

func TestHandler_Execute_FlagConventions(t *testing.T) {
	checkbox := fullCreditData()
	for key, value := range checkbox {
		if value == "Yes" {
			checkbox[key] = "on"
		}
	}

	tests := []struct {
		name       string
		config     applicant.FlagConvention
		override   string
		wantScaled int
	}{
		{name: "checkbox input under yes_no default", config: applicant.ConventionYesNo, wantScaled: 0},
		{name: "checkbox input with per-job override", config: applicant.ConventionYesNo, override: "checkbox", wantScaled: 816},
		{name: "checkbox input under any", config: applicant.ConventionAny, wantScaled: 816},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			cfg.FlagConvention = tt.config
			handler := NewHandler(cfg, nil, nil, logger.NewTestLogger(t))

			input := createInput(checkbox)
			input.FlagConvention = tt.override

			output, err := handler.Execute(context.Background(), input)
			require.NoError(t, err)
			if tt.wantScaled == 0 {
				assert.Less(t, output.ScaledScore, 816)
				assert.Equal(t, 0, output.ScoreReport.Breakdown.Bill)
				return
			}
			assert.Equal(t, tt.wantScaled, output.ScaledScore)
		})
	}
}

func TestHandler_Execute_SuggestionsToggle(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	input := createInput(fullCreditData())
	input.IncludeSuggestions = boolPtr(false)
	without, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	input.IncludeSuggestions = boolPtr(true)
	with, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Empty(t, without.ScoreReport.Suggestions)
	assert.NotEmpty(t, with.ScoreReport.Suggestions)
	assert.NotEqual(t, without.Fingerprint, with.Fingerprint)
	assert.Equal(t, without.ScaledScore, with.ScaledScore)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_InvalidInput(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	tests := []struct {
		name  string
		input *Input
	}{
		{name: "missing application id", input: &Input{ApplicantData: fullCreditData()}},
		{name: "unknown flag convention", input: &Input{ApplicationID: "app-001", FlagConvention: "true_false"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			require.Error(t, err)
			stdErr := errors.AsStandardError(err)
			assert.Equal(t, errors.ErrCodeApplicantDataInvalid, stdErr.Code)
			assert.False(t, stdErr.Retryable)
		})
	}
}

// ==========================
// Cache Tests
// ==========================

func TestHandler_Execute_CachesReport(t *testing.T) {
	mr, client := setupRedis(t)
	handler := createTestHandler(t, client, nil)
	ctx := context.Background()

	first, err := handler.Execute(ctx, createInput(fullCreditData()))
	require.NoError(t, err)
	assert.False(t, first.Cached)

	key := CacheKey("app-001", first.Fingerprint)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 10*time.Minute, mr.TTL(key))

	second, err := handler.Execute(ctx, createInput(fullCreditData()))
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.ScoreReport, second.ScoreReport)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
}

func TestHandler_Execute_DifferentDataMissesCache(t *testing.T) {
	_, client := setupRedis(t)
	handler := createTestHandler(t, client, nil)
	ctx := context.Background()

	first, err := handler.Execute(ctx, createInput(fullCreditData()))
	require.NoError(t, err)

	changed := fullCreditData()
	changed["avg_monthly_balance"] = "500"
	second, err := handler.Execute(ctx, createInput(changed))
	require.NoError(t, err)

	assert.False(t, second.Cached)
	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)
	assert.Less(t, second.ScaledScore, first.ScaledScore)
}

func TestHandler_Execute_CorruptCacheEntryIsRecomputed(t *testing.T) {
	mr, client := setupRedis(t)
	handler := createTestHandler(t, client, nil)

	record := applicant.FromVariables(fullCreditData(), applicant.ConventionYesNo)
	fingerprint, err := Fingerprint(record, true)
	require.NoError(t, err)
	require.NoError(t, mr.Set(CacheKey("app-001", fingerprint), "{not json"))

	output, err := handler.Execute(context.Background(), createInput(fullCreditData()))

	require.NoError(t, err)
	assert.False(t, output.Cached)
	assert.Equal(t, 816, output.ScaledScore)
}

func TestHandler_Execute_RedisUnavailable(t *testing.T) {
	mr, client := setupRedis(t)
	mr.Close()
	handler := createTestHandler(t, client, nil)

	output, err := handler.Execute(context.Background(), createInput(fullCreditData()))

	require.NoError(t, err)
	assert.Equal(t, 816, output.ScaledScore)
	assert.False(t, output.Cached)
}

func TestFingerprint_Deterministic(t *testing.T) {
	record := applicant.FromVariables(fullCreditData(), applicant.ConventionYesNo)

	a, err := Fingerprint(record, true)
	require.NoError(t, err)
	b, err := Fingerprint(record, true)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "tidescore:report:app-9:"+a, CacheKey("app-9", a))
}

// ==========================
// Job Handling Tests
// ==========================

func TestHandler_Handle_CompletesJob(t *testing.T) {
	handler := createTestHandler(t, nil, loadValidator(t))
	client := jobtest.NewClient()

	handler.Handle(client, jobtest.NewJob(1, TaskType, map[string]interface{}{
		"applicationId": "app-001",
		"applicantData": fullCreditData(),
	}))

	require.Len(t, client.Completed(), 1)
	vars, ok := client.CompletedVariables()
	require.True(t, ok)
	assert.Equal(t, 816.0, vars["scaledScore"])
	assert.Equal(t, "Low", vars["riskLevel"])
	report, ok := vars["scoreReport"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 816.0, report["scaled_score"])
}

func TestHandler_Handle_SchemaViolationThrows(t *testing.T) {
	handler := createTestHandler(t, nil, loadValidator(t))
	client := jobtest.NewClient()

	handler.Handle(client, jobtest.NewJob(2, TaskType, map[string]interface{}{
		"applicationId": "app-001",
	}))

	assert.Empty(t, client.Completed())
	assert.Empty(t, client.Failed())
	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, string(errors.ErrCodeApplicantDataInvalid), client.Thrown()[0].ErrorCode)
}
