// internal/workers/scoring/verify-application/handler.go
package verifyapplication

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"tidescore-workers/internal/applicant"
	"tidescore-workers/internal/common/database"
	"tidescore-workers/internal/common/errors"
	"tidescore-workers/internal/common/logger"
	"tidescore-workers/internal/common/metrics"
	"tidescore-workers/internal/models"
	"tidescore-workers/internal/tidescore"
)

const (
	TaskType = "verify-application"

	systemActor         = "system"
	defaultRelationship = "No"
)

// documentOrder fixes the order reviews are written in.
var documentOrder = []string{
	models.DocumentEmploymentProof,
	models.DocumentAirtimeProof,
	models.DocumentBankStatement,
}

var overallStatuses = map[string]bool{
	models.StatusPending:     true,
	models.StatusUnderReview: true,
	models.StatusVerified:    true,
	models.StatusRejected:    true,
}

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
		h.errHandler.HandleJobError(ctx, client, job, errors.NewVerificationInvalidError(fmt.Sprintf("parse input: %v", err)))
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
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	output := &Output{
		ApplicationID:      input.ApplicationID,
		VerificationStatus: input.OverallStatus,
		DocumentsReviewed:  []string{},
		VerifiedAt:         now.Format(time.RFC3339),
	}

	err := database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		applicantData, err := loadApplicantData(ctx, tx, input.ApplicationID)
		if err != nil {
			return err
		}

		for _, docType := range documentOrder {
			review, ok := input.DocumentReviews[docType]
			if !ok || review.Status == "" {
				continue
			}
			if err := reviewDocument(ctx, tx, input.ApplicationID, docType, review, now); err != nil {
				return err
			}
			output.DocumentsReviewed = append(output.DocumentsReviewed, docType)
		}

		overlay := BuildOverlay(input)

		if input.OverallStatus != models.StatusVerified {
			return h.updateStatusOnly(ctx, tx, input, now)
		}

		record := applicant.ApplyVerification(
			applicant.FromVariables(applicantData, h.config.FlagConvention),
			overlay,
			h.config.FlagConvention,
		)
		report := tidescore.Compute(record).WithSuggestions()
		if err := h.updateVerified(ctx, tx, input, overlay, report, now); err != nil {
			return err
		}

		metrics.ObserveScore(string(report.RiskLevel), report.ScaledScore)
		output.Rescored = true
		output.ScaledScore = &report.ScaledScore
		output.RiskLevel = string(report.RiskLevel)
		output.ScoreReport = &report
		return nil
	})
	if err != nil {
		return nil, errors.EnsureStandard(err, errors.NewDatabaseUpdateFailedError)
	}

	h.logger.Info("verification recorded", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"status":        input.OverallStatus,
		"rescored":      output.Rescored,
		"documents":     output.DocumentsReviewed,
	})

	return output, nil
}

func validateInput(input *Input) error {
	if input.ApplicationID == "" {
		return errors.NewVerificationInvalidError("applicationId is required")
	}
	if input.AdminEmail == "" {
		return errors.NewVerificationInvalidError("adminEmail is required")
	}
	if !overallStatuses[input.OverallStatus] {
		return errors.NewVerificationInvalidError(fmt.Sprintf("unknown overallStatus %q", input.OverallStatus))
	}
	for docType := range input.DocumentReviews {
		if !models.IsDocumentType(docType) {
			return errors.NewVerificationInvalidError(fmt.Sprintf("unknown document type %q", docType))
		}
	}
	return nil
}

// BuildOverlay derives the verification record an admin review implies.
// Residency and bills are taken as verified once an admin has reviewed the
// application.
func BuildOverlay(input *Input) map[string]interface{} {
	documentVerified := func(docType string) bool {
		return input.DocumentReviews[docType].Status == models.DocumentVerified
	}
	gateStatus := func(docType string) string {
		if documentVerified(docType) {
			return string(tidescore.StatusVerified)
		}
		return string(tidescore.StatusUnverified)
	}
	relationship := func(confirmed string) string {
		if confirmed == "" {
			return defaultRelationship
		}
		return confirmed
	}

	return map[string]interface{}{
		applicant.KeyEmploymentVerified: documentVerified(models.DocumentEmploymentProof),
		"education_verified":            input.EducationVerified,
		applicant.KeyResidencyVerified:  true,
		applicant.KeyAirtimeStatus:      gateStatus(models.DocumentAirtimeProof),
		applicant.KeyBillStatus:         string(tidescore.StatusVerified),
		applicant.KeyBankStatus:         gateStatus(models.DocumentBankStatement),
		applicant.KeyG1Verified:         input.G1Verified,
		applicant.KeyG2Verified:         input.G2Verified,
		applicant.KeyG1Relationship:     relationship(input.G1RelationshipConfirmed),
		applicant.KeyG2Relationship:     relationship(input.G2RelationshipConfirmed),
	}
}

func loadApplicantData(ctx context.Context, tx *sql.Tx, applicationID string) (map[string]interface{}, error) {
	var raw []byte
	err := tx.QueryRowContext(ctx,
		`SELECT applicant_data FROM applications WHERE id = $1 FOR UPDATE`,
		applicationID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, errors.NewApplicationNotFoundError(applicationID)
	}
	if err != nil {
		return nil, errors.NewDatabaseUpdateFailedError(fmt.Errorf("load application: %w", err))
	}

	data := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, errors.NewApplicantDataInvalidError(fmt.Sprintf("stored applicant_data: %v", err))
		}
	}
	return data, nil
}

func reviewDocument(ctx context.Context, tx *sql.Tx, applicationID, docType string, review DocumentReview, now time.Time) error {
	oldStatus := models.DocumentPending
	err := tx.QueryRowContext(ctx,
		`SELECT verification_status FROM application_files WHERE application_id = $1 AND file_type = $2`,
		applicationID, docType,
	).Scan(&oldStatus)
	if err != nil && err != sql.ErrNoRows {
		return errors.NewDatabaseUpdateFailedError(fmt.Errorf("read %s status: %w", docType, err))
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO application_files (application_id, file_type, verification_status, admin_notes, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (application_id, file_type) DO UPDATE
		SET verification_status = EXCLUDED.verification_status,
		    admin_notes = EXCLUDED.admin_notes,
		    updated_at = EXCLUDED.updated_at`,
		applicationID, docType, review.Status, nullString(review.Notes), now,
	)
	if err != nil {
		return errors.NewDatabaseUpdateFailedError(fmt.Errorf("update %s status: %w", docType, err))
	}

	if review.Notes == "" {
		return nil
	}
	return insertHistory(ctx, tx, models.VerificationHistory{
		ApplicationID: applicationID,
		AdminEmail:    systemActor,
		Action:        "File Verification",
		FieldName:     strPtr(docType + "_status"),
		OldValue:      strPtr(oldStatus),
		NewValue:      strPtr(review.Status),
		Notes:         strPtr(review.Notes),
		CreatedAt:     now,
	})
}

func (h *Handler) updateStatusOnly(ctx context.Context, tx *sql.Tx, input *Input, now time.Time) error {
	if err := execUpdate(ctx, tx, input.ApplicationID, `
		UPDATE applications
		SET verification_status = $2, verified_at = $3, verified_by = $4, updated_at = $3
		WHERE id = $1`,
		input.ApplicationID, input.OverallStatus, now, input.AdminEmail,
	); err != nil {
		return err
	}

	return insertHistory(ctx, tx, models.VerificationHistory{
		ApplicationID: input.ApplicationID,
		AdminEmail:    input.AdminEmail,
		Action:        "Status changed to " + input.OverallStatus,
		Notes:         nullablePtr(input.Notes),
		CreatedAt:     now,
	})
}

func (h *Handler) updateVerified(ctx context.Context, tx *sql.Tx, input *Input, overlay map[string]interface{}, report tidescore.Report, now time.Time) error {
	overlayJSON, err := json.Marshal(overlay)
	if err != nil {
		return errors.NewInternalError(fmt.Errorf("marshal overlay: %w", err))
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return errors.NewInternalError(fmt.Errorf("marshal report: %w", err))
	}

	if err := execUpdate(ctx, tx, input.ApplicationID, `
		UPDATE applications
		SET verification_status = $2, admin_verified_data = $3, score_result = $4,
		    scaled_score = $5, risk_level = $6, verified_at = $7, verified_by = $8, updated_at = $7
		WHERE id = $1`,
		input.ApplicationID, models.StatusVerified, overlayJSON, reportJSON,
		report.ScaledScore, string(report.RiskLevel), now, input.AdminEmail,
	); err != nil {
		return err
	}

	return insertHistory(ctx, tx, models.VerificationHistory{
		ApplicationID: input.ApplicationID,
		AdminEmail:    input.AdminEmail,
		Action:        "Status changed to " + models.StatusVerified,
		FieldName:     strPtr("scaled_score"),
		NewValue:      strPtr(fmt.Sprintf("%d", report.ScaledScore)),
		Notes:         nullablePtr(input.Notes),
		CreatedAt:     now,
	})
}

func execUpdate(ctx context.Context, tx *sql.Tx, applicationID, query string, args ...interface{}) error {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewDatabaseUpdateFailedError(err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return errors.NewApplicationNotFoundError(applicationID)
	}
	return nil
}

func insertHistory(ctx context.Context, tx *sql.Tx, entry models.VerificationHistory) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO verification_history
		(id, application_id, admin_email, action, field_name, old_value, new_value, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New().String(), entry.ApplicationID, entry.AdminEmail, entry.Action,
		entry.FieldName, entry.OldValue, entry.NewValue, entry.Notes, entry.CreatedAt,
	)
	if err != nil {
		return errors.NewDatabaseUpdateFailedError(fmt.Errorf("insert verification history: %w", err))
	}
	return nil
}

func strPtr(s string) *string { return &s }

func nullablePtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
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
