// internal/workers/communication/send-score-notification/models.go
package sendscorenotification

import "tidescore-workers/internal/tidescore"

type Input struct {
	ApplicationID  string           `json:"applicationId"`
	RecipientEmail string           `json:"recipientEmail"`
	RecipientName  string           `json:"recipientName,omitempty"`
	RecipientPhone string           `json:"recipientPhone,omitempty"`
	ScoreReport    tidescore.Report `json:"scoreReport"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "partial", or "disabled"
	EmailMessageID string `json:"emailMessageId,omitempty"`
	SMSMessageID   string `json:"smsMessageId,omitempty"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

const (
	StatusSent     = "sent"
	StatusPartial  = "partial"
	StatusDisabled = "disabled"
)
