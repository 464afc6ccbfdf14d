// internal/common/aws/aws_test.go
package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-1")}, nil
}

func TestEmailSender_Send(t *testing.T) {
	api := &fakeSES{}
	sender := NewEmailSenderWithAPI(api, "scores@tidescore.example")

	id, err := sender.Send(context.Background(), Email{
		To:       "ada@example.com",
		Subject:  "Your TideScore",
		TextBody: "816",
	})

	require.NoError(t, err)
	assert.Equal(t, "ses-1", id)
	assert.Equal(t, "scores@tidescore.example", aws.ToString(api.input.Source))
	assert.Equal(t, []string{"ada@example.com"}, api.input.Destination.ToAddresses)
	assert.Nil(t, api.input.Message.Body.Html)
}

func TestEmailSender_Errors(t *testing.T) {
	api := &fakeSES{err: errors.New("throttled")}
	sender := NewEmailSenderWithAPI(api, "scores@tidescore.example")

	_, err := sender.Send(context.Background(), Email{})
	assert.EqualError(t, err, "email recipient is empty")

	_, err = sender.Send(context.Background(), Email{To: "ada@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestSMSSender_Send(t *testing.T) {
	api := &fakeSNS{}
	sender := NewSMSSenderWithAPI(api, "TideScore")

	id, err := sender.Send(context.Background(), "+2348000000000", "Your TideScore is 816")

	require.NoError(t, err)
	assert.Equal(t, "sns-1", id)
	assert.Equal(t, "+2348000000000", aws.ToString(api.input.PhoneNumber))
	assert.Equal(t, "TideScore", aws.ToString(api.input.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
}

func TestSMSSender_EmptyPhone(t *testing.T) {
	sender := NewSMSSenderWithAPI(&fakeSNS{}, "")

	_, err := sender.Send(context.Background(), "", "hello")
	assert.Error(t, err)
}
