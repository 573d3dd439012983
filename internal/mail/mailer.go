// Package mail delivers customer replies and operator alerts over SES and SNS.
package mail

import (
	"context"
	"fmt"
	"strings"

	awsclients "reviewgate/internal/common/aws"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/metrics"
	"reviewgate/internal/feedback"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const (
	ChannelEmail = "ses"
	ChannelSMS   = "sns_sms"
	ChannelTopic = "sns_topic"
)

// SESMailer sends feedback replies as plain emails.
type SESMailer struct {
	client awsclients.SESAPI
	from   string
	log    logger.Logger
}

var _ feedback.Mailer = (*SESMailer)(nil)

func NewSESMailer(client awsclients.SESAPI, from string, log logger.Logger) *SESMailer {
	return &SESMailer{
		client: client,
		from:   from,
		log:    log.WithFields(map[string]interface{}{"component": "mailer"}),
	}
}

// SendReply implements feedback.Mailer.
func (m *SESMailer) SendReply(ctx context.Context, reply feedback.Reply) error {
	if strings.TrimSpace(reply.To) == "" {
		return fmt.Errorf("reply to feedback %s has no recipient", reply.FeedbackID)
	}

	err := sendEmail(ctx, m.client, m.from, reply.To, "Re: your feedback", replyBody(reply))
	metrics.Deliveries.WithLabelValues(ChannelEmail, result(err)).Inc()
	if err != nil {
		m.log.Error("reply send failed", map[string]interface{}{
			"feedbackId": reply.FeedbackID,
			"error":      err.Error(),
		})
		return err
	}

	m.log.Info("reply sent", map[string]interface{}{
		"feedbackId": reply.FeedbackID,
		"businessId": reply.BusinessID,
	})
	return nil
}

func replyBody(r feedback.Reply) string {
	if r.CustomerName == "" {
		return r.Message
	}
	return fmt.Sprintf("Hi %s,\n\n%s", r.CustomerName, r.Message)
}

func sendEmail(ctx context.Context, client awsclients.SESAPI, from, to, subject, body string) error {
	_, err := client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(from),
	})
	return err
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
