package mail

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/feedback"
	"reviewgate/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls         []*ses.SendEmailInput
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls = append(m.calls, params)
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, params, optFns...)
	}
	return &ses.SendEmailOutput{}, nil
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	calls       []*sns.PublishInput
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls = append(m.calls, params)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, params, optFns...)
	}
	return &sns.PublishOutput{}, nil
}

func testBusiness(contact models.ContactSettings) models.Business {
	return models.Business{ID: "b1", Name: "Sunrise Cafe", ContactSettings: contact}
}

func testFeedback() models.Feedback {
	return models.Feedback{
		ID:      "f1",
		Rating:  2,
		Comment: "Cold food",
		Name:    "Dana",
		Email:   "dana@example.com",
		Source:  "table_1",
	}
}

// ==========================
// SESMailer
// ==========================

func TestSESMailer_SendReply(t *testing.T) {
	client := &MockSESService{}
	m := NewSESMailer(client, "no-reply@example.com", logger.NewTestLogger(t))

	err := m.SendReply(context.Background(), feedback.Reply{
		FeedbackID:   "f1",
		CustomerName: "Dana",
		To:           "dana@example.com",
		Message:      "Sorry about that.",
	})
	require.NoError(t, err)
	require.Len(t, client.calls, 1)

	in := client.calls[0]
	assert.Equal(t, []string{"dana@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "no-reply@example.com", aws.ToString(in.Source))
	assert.Equal(t, "Hi Dana,\n\nSorry about that.", aws.ToString(in.Message.Body.Text.Data))
}

func TestSESMailer_SendReplyErrors(t *testing.T) {
	client := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}
	m := NewSESMailer(client, "no-reply@example.com", logger.NewTestLogger(t))

	err := m.SendReply(context.Background(), feedback.Reply{FeedbackID: "f1", To: "dana@example.com", Message: "hi"})
	assert.EqualError(t, err, "throttled")

	err = m.SendReply(context.Background(), feedback.Reply{FeedbackID: "f1", To: "  ", Message: "hi"})
	assert.Error(t, err)
	assert.Len(t, client.calls, 1)
}

// ==========================
// Alerter
// ==========================

func TestAlerter_Disabled(t *testing.T) {
	sesClient, snsClient := &MockSESService{}, &MockSNSService{}
	a := NewAlerter(sesClient, snsClient, AlertConfig{AlertTopicARN: "arn:topic"}, logger.NewTestLogger(t))

	receipt, err := a.NotifyLowRating(context.Background(),
		testBusiness(models.ContactSettings{NotifyEmail: "owner@example.com"}), testFeedback())
	require.NoError(t, err)
	assert.True(t, receipt.Skipped)
	assert.Empty(t, sesClient.calls)
	assert.Empty(t, snsClient.calls)
}

func TestAlerter_AllChannels(t *testing.T) {
	sesClient, snsClient := &MockSESService{}, &MockSNSService{}
	a := NewAlerter(sesClient, snsClient, AlertConfig{
		FromEmail:     "alerts@example.com",
		SMSSenderID:   "ReviewGate",
		AlertTopicARN: "arn:aws:sns:us-east-1:1:alerts",
	}, logger.NewTestLogger(t))

	receipt, err := a.NotifyLowRating(context.Background(), testBusiness(models.ContactSettings{
		NotifyEmail: "owner@example.com",
		NotifyPhone: "+15551234567",
		Enabled:     true,
	}), testFeedback())
	require.NoError(t, err)
	assert.False(t, receipt.Skipped)
	assert.Equal(t, []string{ChannelEmail, ChannelSMS, ChannelTopic}, receipt.Channels)

	require.Len(t, sesClient.calls, 1)
	body := aws.ToString(sesClient.calls[0].Message.Body.Text.Data)
	assert.Contains(t, body, "Rating: 2/5")
	assert.Contains(t, body, "Source: table_1")
	assert.Contains(t, body, "Dana <dana@example.com>")
	assert.Equal(t, "Sunrise Cafe: new 2-star feedback", aws.ToString(sesClient.calls[0].Message.Subject.Data))

	require.Len(t, snsClient.calls, 2)
	assert.Equal(t, "+15551234567", aws.ToString(snsClient.calls[0].PhoneNumber))
	assert.Equal(t, "ReviewGate", aws.ToString(snsClient.calls[0].MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
	assert.Equal(t, "arn:aws:sns:us-east-1:1:alerts", aws.ToString(snsClient.calls[1].TopicArn))
}

func TestAlerter_PartialFailure(t *testing.T) {
	sesClient := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("mail from not verified")
		},
	}
	snsClient := &MockSNSService{}
	a := NewAlerter(sesClient, snsClient, AlertConfig{}, logger.NewTestLogger(t))

	receipt, err := a.NotifyLowRating(context.Background(), testBusiness(models.ContactSettings{
		NotifyEmail: "owner@example.com",
		NotifyPhone: "+15551234567",
		Enabled:     true,
	}), testFeedback())

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAlertPublishFailed))
	assert.Equal(t, []string{ChannelSMS}, receipt.Channels)
	assert.Nil(t, snsClient.calls[0].MessageAttributes)
}

func TestAlerter_NilClients(t *testing.T) {
	a := NewAlerter(nil, nil, AlertConfig{AlertTopicARN: "arn:topic"}, logger.NewNoOpLogger())

	receipt, err := a.NotifyLowRating(context.Background(), testBusiness(models.ContactSettings{
		NotifyEmail: "owner@example.com",
		Enabled:     true,
	}), testFeedback())
	require.NoError(t, err)
	assert.Empty(t, receipt.Channels)
}

func TestSMSMessageTruncates(t *testing.T) {
	f := testFeedback()
	f.Comment = strings.Repeat("é", 200)
	msg := smsMessage(testBusiness(models.ContactSettings{}), f)
	assert.True(t, strings.HasSuffix(msg, "..."))
	assert.Equal(t, 117, strings.Count(msg, "é"))
}
