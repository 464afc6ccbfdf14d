// internal/workers/scoring/persist-score-report/handler.go
package persistscorereport

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"tidescore-workers/internal/common/errors"
	"tidescore-workers/internal/common/logger"
	"tidescore-workers/internal/models"
	"tidescore-workers/internal/tidescore"
)

const (
	TaskType = "persist-score-report"

	defaultActor = "tidescore-workers"
)

type Handler struct {
	config     *Config
	db         *sql.DB
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
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

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errHandler.HandleJobError(ctx, client, job, errors.NewApplicantDataInvalidError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, errors.NewApplicantDataInvalidError("applicationId is required")
	}
	report := input.ScoreReport
	if report.ScaledScore < 0 || report.ScaledScore > tidescore.MaxScaledScore || !report.RiskLevel.Valid() {
		return nil, errors.NewApplicantDataInvalidError(
			fmt.Sprintf("score report out of range: %d %q", report.ScaledScore, report.RiskLevel))
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("marshal report: %w", err))
	}

	now := time.Now().UTC()
	result, err := h.db.ExecContext(ctx, `
		UPDATE applications
		SET score_result = $2, scaled_score = $3, risk_level = $4, updated_at = $5
		WHERE id = $1`,
		input.ApplicationID, reportJSON, report.ScaledScore, string(report.RiskLevel), now,
	)
	if err != nil {
		return nil, errors.NewDatabaseUpdateFailedError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, errors.NewDatabaseUpdateFailedError(err)
	}
	if rows == 0 {
		return nil, errors.NewApplicationNotFoundError(input.ApplicationID)
	}

	h.writeAudit(ctx, input, now)

	h.logger.Info("score report persisted", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"scaledScore":   report.ScaledScore,
		"riskLevel":     report.RiskLevel,
	})

	return &Output{
		ApplicationID: input.ApplicationID,
		Persisted:     true,
		UpdatedAt:     now.Format(time.RFC3339),
	}, nil
}

// writeAudit records the change. Failures are logged only.
func (h *Handler) writeAudit(ctx context.Context, input *Input, now time.Time) {
	actor := input.RecordedBy
	if actor == "" {
		actor = defaultActor
	}

	details, err := json.Marshal(map[string]interface{}{
		"scaledScore": input.ScoreReport.ScaledScore,
		"riskLevel":   input.ScoreReport.RiskLevel,
	})
	if err != nil {
		h.logger.Warn("failed to marshal audit log details", map[string]interface{}{
			"error": err,
		})
		details = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, application_id, action, actor, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New().String(), input.ApplicationID, models.AuditScoreRecorded, actor, details, now,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": input.ApplicationID,
		})
	}
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
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
