package mail

import (
	"context"
	"fmt"
	"strings"

	awsclients "reviewgate/internal/common/aws"
	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/metrics"
	"reviewgate/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// AlertConfig holds the sender identities for operator alerts.
type AlertConfig struct {
	FromEmail     string
	SMSSenderID   string
	AlertTopicARN string
}

// AlertReceipt lists the channels an alert went out on.
type AlertReceipt struct {
	Skipped  bool     `json:"skipped"`
	Channels []string `json:"channels"`
}

// Alerter tells a business operator that a low rating was intercepted.
// Either client may be nil, which disables that channel.
type Alerter struct {
	ses awsclients.SESAPI
	sns awsclients.SNSAPI
	cfg AlertConfig
	log logger.Logger
}

func NewAlerter(sesClient awsclients.SESAPI, snsClient awsclients.SNSAPI, cfg AlertConfig, log logger.Logger) *Alerter {
	return &Alerter{
		ses: sesClient,
		sns: snsClient,
		cfg: cfg,
		log: log.WithFields(map[string]interface{}{"component": "alerter"}),
	}
}

// NotifyLowRating sends an alert for f through every configured channel of
// b.ContactSettings and the shared alert topic. Alerts are skipped when the
// business has them disabled. Every channel is attempted; the first failure
// is returned.
func (a *Alerter) NotifyLowRating(ctx context.Context, b models.Business, f models.Feedback) (AlertReceipt, error) {
	contact := b.ContactSettings
	if !contact.Enabled {
		return AlertReceipt{Skipped: true, Channels: []string{}}, nil
	}

	subject, body := alertMessage(b, f)
	receipt := AlertReceipt{Channels: []string{}}
	var firstErr error

	deliver := func(channel string, send func() error) {
		err := send()
		metrics.Deliveries.WithLabelValues(channel, result(err)).Inc()
		if err != nil {
			a.log.Warn("alert channel failed", map[string]interface{}{
				"channel":    channel,
				"businessId": b.ID,
				"error":      err.Error(),
			})
			if firstErr == nil {
				firstErr = errors.NewAlertPublishError(channel, err)
			}
			return
		}
		receipt.Channels = append(receipt.Channels, channel)
	}

	if contact.NotifyEmail != "" && a.ses != nil {
		deliver(ChannelEmail, func() error {
			return sendEmail(ctx, a.ses, a.cfg.FromEmail, contact.NotifyEmail, subject, body)
		})
	}
	if contact.NotifyPhone != "" && a.sns != nil {
		deliver(ChannelSMS, func() error {
			_, err := a.sns.Publish(ctx, &sns.PublishInput{
				PhoneNumber:       aws.String(contact.NotifyPhone),
				Message:           aws.String(smsMessage(b, f)),
				MessageAttributes: a.smsAttributes(),
			})
			return err
		})
	}
	if a.cfg.AlertTopicARN != "" && a.sns != nil {
		deliver(ChannelTopic, func() error {
			_, err := a.sns.Publish(ctx, &sns.PublishInput{
				TopicArn: aws.String(a.cfg.AlertTopicARN),
				Subject:  aws.String(subject),
				Message:  aws.String(body),
			})
			return err
		})
	}

	a.log.Info("alert processed", map[string]interface{}{
		"businessId": b.ID,
		"feedbackId": f.ID,
		"channels":   strings.Join(receipt.Channels, ","),
	})
	return receipt, firstErr
}

func (a *Alerter) smsAttributes() map[string]snstypes.MessageAttributeValue {
	if a.cfg.SMSSenderID == "" {
		return nil
	}
	return map[string]snstypes.MessageAttributeValue{
		"AWS.SNS.SMS.SenderID": {
			DataType:    aws.String("String"),
			StringValue: aws.String(a.cfg.SMSSenderID),
		},
	}
}

func alertMessage(b models.Business, f models.Feedback) (string, string) {
	subject := fmt.Sprintf("%s: new %d-star feedback", b.Name, f.Rating)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Rating: %d/5\n", f.Rating)
	if f.Source != "" {
		fmt.Fprintf(&sb, "Source: %s\n", f.Source)
	}
	if f.Name != "" {
		fmt.Fprintf(&sb, "From: %s", f.Name)
		if f.Email != "" {
			fmt.Fprintf(&sb, " <%s>", f.Email)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\n%s\n", f.Comment)
	return subject, sb.String()
}

func smsMessage(b models.Business, f models.Feedback) string {
	comment := f.Comment
	if r := []rune(comment); len(r) > 120 {
		comment = string(r[:117]) + "..."
	}
	return fmt.Sprintf("%s: %d-star feedback: %s", b.Name, f.Rating, comment)
}
