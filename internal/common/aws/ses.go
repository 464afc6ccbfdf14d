// internal/common/aws/ses.go
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the subset of the SES client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Email is a plain text and HTML message to a single recipient.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// EmailSender sends mail from a fixed source address.
type EmailSender struct {
	api  SESAPI
	from string
}

// NewEmailSender wraps an SES client created from cfg.
func NewEmailSender(cfg aws.Config, from string) *EmailSender {
	return NewEmailSenderWithAPI(ses.NewFromConfig(cfg), from)
}

func NewEmailSenderWithAPI(api SESAPI, from string) *EmailSender {
	return &EmailSender{api: api, from: from}
}

// Send delivers the email and returns the SES message ID.
func (s *EmailSender) Send(ctx context.Context, email Email) (string, error) {
	if email.To == "" {
		return "", fmt.Errorf("email recipient is empty")
	}

	body := &types.Body{Text: &types.Content{Data: aws.String(email.TextBody)}}
	if email.HTMLBody != "" {
		body.Html = &types.Content{Data: aws.String(email.HTMLBody)}
	}

	out, err := s.api.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{email.To}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(email.Subject)},
			Body:    body,
		},
		Source: aws.String(s.from),
	})
	if err != nil {
		return "", fmt.Errorf("ses send email: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
