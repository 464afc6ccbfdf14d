// internal/workers/communication/send-score-notification/handler.go
package sendscorenotification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"tidescore-workers/internal/common/aws"
	"tidescore-workers/internal/common/errors"
	"tidescore-workers/internal/common/logger"
	"tidescore-workers/internal/common/metrics"
)

const (
	TaskType = "send-score-notification"
)

// EmailSender is satisfied by aws.EmailSender.
type EmailSender interface {
	Send(ctx context.Context, email aws.Email) (string, error)
}

// SMSSender is satisfied by aws.SMSSender.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) (string, error)
}

type Handler struct {
	config     *Config
	email      EmailSender
	sms        SMSSender
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

// NewHandler creates the handler. A nil sender disables its channel.
func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		email:      email,
		sms:        sms,
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
	if h.emailEnabled() && input.RecipientEmail == "" {
		return nil, errors.NewApplicantDataInvalidError("recipientEmail is required")
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
	}

	emailSent := false
	if h.emailEnabled() {
		id, err := h.sendEmail(ctx, input)
		if err != nil {
			metrics.NotificationsSent.WithLabelValues("email", "failed").Inc()
			return nil, errors.NewNotificationSendFailedError("email", err).
				WithMetadata("applicationId", input.ApplicationID)
		}
		metrics.NotificationsSent.WithLabelValues("email", StatusSent).Inc()
		output.EmailMessageID = id
		output.Status = StatusSent
		emailSent = true
	}

	if h.shouldSendSMS(input) {
		id, err := h.sms.Send(ctx, input.RecipientPhone, RenderSMS(input))
		if err != nil {
			metrics.NotificationsSent.WithLabelValues("sms", "failed").Inc()
			h.logger.Warn("sms delivery failed", map[string]interface{}{
				"applicationId": input.ApplicationID,
				"error":         err,
			})
			if emailSent {
				output.Status = StatusPartial
			} else {
				return nil, errors.NewNotificationSendFailedError("sms", err).
					WithMetadata("applicationId", input.ApplicationID)
			}
		} else {
			metrics.NotificationsSent.WithLabelValues("sms", StatusSent).Inc()
			output.SMSMessageID = id
			output.Status = StatusSent
		}
	}

	output.SentAt = time.Now().UTC().Format(time.RFC3339)

	h.logger.Info("score notification processed", map[string]interface{}{
		"applicationId":  input.ApplicationID,
		"notificationId": output.NotificationID,
		"status":         output.Status,
	})

	return output, nil
}

func (h *Handler) emailEnabled() bool {
	return h.config.EmailEnabled && h.email != nil
}

func (h *Handler) shouldSendSMS(input *Input) bool {
	if !h.config.SMSEnabled || h.sms == nil || input.RecipientPhone == "" {
		return false
	}
	for _, level := range h.config.SMSRiskLevels {
		if level == string(input.ScoreReport.RiskLevel) {
			return true
		}
	}
	return false
}

func (h *Handler) sendEmail(ctx context.Context, input *Input) (string, error) {
	text, html, err := RenderEmail(input)
	if err != nil {
		return "", err
	}
	return h.email.Send(ctx, aws.Email{
		To:       input.RecipientEmail,
		Subject:  emailSubject,
		TextBody: text,
		HTMLBody: html,
	})
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
