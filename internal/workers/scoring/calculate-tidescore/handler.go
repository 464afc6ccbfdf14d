// internal/workers/scoring/calculate-tidescore/handler.go
package calculatetidescore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	"tidescore-workers/internal/applicant"
	"tidescore-workers/internal/common/database"
	"tidescore-workers/internal/common/errors"
	"tidescore-workers/internal/common/logger"
	"tidescore-workers/internal/common/metrics"
	"tidescore-workers/internal/common/validation"
	"tidescore-workers/internal/tidescore"
)

const (
	TaskType = "calculate-tidescore"

	cacheKeyPrefix = "tidescore:report:"
)

type Handler struct {
	config     *Config
	redis      redis.Cmdable
	validator  *validation.Validator
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

// NewHandler builds the handler. A nil redis client disables caching and a
// nil validator skips schema checks.
func NewHandler(config *Config, rdb redis.Cmdable, validator *validation.Validator, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		redis:      rdb,
		validator:  validator,
		errHandler: errors.NewErrorHandler(scoped),
		logger:     scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewApplicantDataInvalidError(fmt.Sprintf("parse variables: %v", err))
	}

	result, err := h.validator.Validate(TaskType, vars)
	if err != nil {
		return nil, errors.NewSchemaValidationFailedError(TaskType, err)
	}
	if !result.Valid {
		return nil, errors.NewApplicantDataInvalidError(result.Summary())
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewApplicantDataInvalidError(fmt.Sprintf("decode input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, errors.NewApplicantDataInvalidError("applicationId is required")
	}

	conv := h.config.FlagConvention
	if input.FlagConvention != "" {
		parsed, err := applicant.ParseConvention(input.FlagConvention)
		if err != nil {
			return nil, errors.NewApplicantDataInvalidError(err.Error())
		}
		conv = parsed
	}

	withSuggestions := h.config.IncludeSuggestions
	if input.IncludeSuggestions != nil {
		withSuggestions = *input.IncludeSuggestions
	}

	record := applicant.FromVariables(input.ApplicantData, conv)
	if len(input.VerificationData) > 0 {
		record = applicant.ApplyVerification(record, input.VerificationData, conv)
	}

	fingerprint, err := Fingerprint(record, withSuggestions)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	cacheKey := CacheKey(input.ApplicationID, fingerprint)

	if report, ok := h.lookup(ctx, cacheKey); ok {
		return newOutput(input.ApplicationID, report, fingerprint, true), nil
	}

	report := tidescore.Compute(record)
	if withSuggestions {
		report = report.WithSuggestions()
	}
	metrics.ObserveScore(string(report.RiskLevel), report.ScaledScore)

	h.store(ctx, cacheKey, report)

	h.logger.Info("score computed", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"scaledScore":   report.ScaledScore,
		"riskLevel":     report.RiskLevel,
	})

	return newOutput(input.ApplicationID, report, fingerprint, false), nil
}

func (h *Handler) lookup(ctx context.Context, key string) (tidescore.Report, bool) {
	var report tidescore.Report
	if h.redis == nil {
		return report, false
	}

	err := database.GetJSON(ctx, h.redis, key, &report)
	if err == nil {
		metrics.ObserveCache("report", true)
		return report, true
	}
	metrics.ObserveCache("report", false)
	if err != database.ErrCacheMiss {
		h.logger.Warn("report cache read failed", map[string]interface{}{
			"error": err,
			"key":   key,
		})
	}
	return report, false
}

func (h *Handler) store(ctx context.Context, key string, report tidescore.Report) {
	if h.redis == nil {
		return
	}
	if err := database.SetJSON(ctx, h.redis, key, report, h.config.CacheTTL); err != nil {
		h.logger.Warn("report cache write failed", map[string]interface{}{
			"error": err,
			"key":   key,
		})
	}
}

func newOutput(applicationID string, report tidescore.Report, fingerprint string, cached bool) *Output {
	return &Output{
		ApplicationID: applicationID,
		ScaledScore:   report.ScaledScore,
		RiskLevel:     string(report.RiskLevel),
		ScoreReport:   report,
		Fingerprint:   fingerprint,
		Cached:        cached,
	}
}

// Fingerprint identifies a scoring request by its canonical record and
// whether suggestions were asked for.
func Fingerprint(record tidescore.ApplicantRecord, withSuggestions bool) (string, error) {
	data, err := json.Marshal(struct {
		Record      tidescore.ApplicantRecord `json:"record"`
		Suggestions bool                      `json:"suggestions"`
	}{record, withSuggestions})
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func CacheKey(applicationID, fingerprint string) string {
	return cacheKeyPrefix + applicationID + ":" + fingerprint
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":      job.Key,
		"scaledScore": output.ScaledScore,
		"cached":      output.Cached,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
