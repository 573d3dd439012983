package feedback

import (
	"context"
	"time"

	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/metrics"
	"reviewgate/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

// Reply is a message to the customer who left a feedback record.
type Reply struct {
	FeedbackID   string
	BusinessID   string
	CustomerName string
	To           string
	Message      string
}

// Mailer delivers replies. The engine works without one; replies are then
// only recorded on the timeline.
type Mailer interface {
	SendReply(ctx context.Context, reply Reply) error
}

const (
	replySent   = "Reply sent to customer"
	replyFailed = "Reply delivery failed"
)

// ReplyReceipt describes a completed SendReply.
type ReplyReceipt struct {
	Result
	ActivityID  string
	To          string
	Delivered   bool
	CompletedAt time.Time
}

// SendReply records an email activity on the record, persists it, then hands
// the reply to the Mailer and waits out the configured completion delay. The
// storage write always happens before completion is reported. A delivery
// failure is returned after the write; the timeline keeps the attempt,
// relabelled as failed.
func (e *Engine) SendReply(ctx context.Context, id, to, message string) (ReplyReceipt, error) {
	if err := ctx.Err(); err != nil {
		return ReplyReceipt{}, err
	}

	var (
		receipt ReplyReceipt
		reply   Reply
	)
	res, err := e.mutateOne(ctx, "SendReply", id, func(f *models.Feedback, now time.Time) bool {
		a := e.activity(now, models.ActivityEmail, replySent, models.EmailDetail{To: to, Message: message})
		f.Prepend(a)
		f.UpdatedAt = now
		receipt.ActivityID = a.ID
		reply = Reply{
			FeedbackID:   f.ID,
			BusinessID:   f.BusinessID,
			CustomerName: f.Name,
			To:           to,
			Message:      message,
		}
		return true
	})
	if err != nil || !res.Found {
		return ReplyReceipt{Result: res}, err
	}
	receipt.Result = res
	receipt.To = to

	ctx, span := e.start(ctx, "SendReply.deliver", attribute.String("feedback.id", id))
	defer span.End()

	if e.mailer != nil {
		if err := e.mailer.SendReply(ctx, reply); err != nil {
			metrics.Deliveries.WithLabelValues("reply", "error").Inc()
			e.log.Error("reply delivery failed", map[string]interface{}{"feedbackId": id, "error": err})
			fail(span, err)
			e.markReplyFailed(context.WithoutCancel(ctx), id, receipt.ActivityID)
			return receipt, errors.NewReplyDeliveryError(err)
		}
		metrics.Deliveries.WithLabelValues("reply", "ok").Inc()
		receipt.Delivered = true
	}

	if e.replyDelay > 0 {
		timer := time.NewTimer(e.replyDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return receipt, ctx.Err()
		}
	}

	receipt.CompletedAt = e.stamp()
	e.log.Info("reply recorded", map[string]interface{}{"feedbackId": id, "delivered": receipt.Delivered})
	return receipt, nil
}

func (e *Engine) markReplyFailed(ctx context.Context, id, activityID string) {
	_, err := e.mutateOne(ctx, "SendReply.failed", id, func(f *models.Feedback, _ time.Time) bool {
		for i := range f.Activity {
			if f.Activity[i].ID == activityID {
				f.Activity[i].Message = replyFailed
				return true
			}
		}
		return false
	})
	if err != nil {
		e.log.Warn("failed reply not relabelled", map[string]interface{}{"feedbackId": id, "error": err})
	}
}
