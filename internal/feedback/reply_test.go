package feedback

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"reviewgate/internal/common/errors"
	"reviewgate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockMailer records replies and can observe storage at delivery time.
type mockMailer struct {
	mu          sync.Mutex
	replies     []Reply
	err         error
	onSendReply func(ctx context.Context, reply Reply)
}

func (m *mockMailer) SendReply(ctx context.Context, reply Reply) error {
	if m.onSendReply != nil {
		m.onSendReply(ctx, reply)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply)
	return m.err
}

func TestSendReply_WritesBeforeDelivery(t *testing.T) {
	mailer := &mockMailer{}
	fx := setupEngine(t, WithMailer(mailer))
	f := fx.add(t, "b1", 2, "")

	var seenAtDelivery models.Feedback
	mailer.onSendReply = func(ctx context.Context, reply Reply) {
		seenAtDelivery, _, _ = fx.engine.Get(ctx, reply.FeedbackID)
	}

	receipt, err := fx.engine.SendReply(context.Background(), f.ID, "guest@example.com", "Sorry about the coffee!")
	require.NoError(t, err)
	assert.True(t, receipt.Found)
	assert.True(t, receipt.Delivered)
	assert.NotEmpty(t, receipt.ActivityID)
	assert.False(t, receipt.CompletedAt.IsZero())

	require.Len(t, mailer.replies, 1)
	assert.Equal(t, Reply{FeedbackID: f.ID, BusinessID: "b1", To: "guest@example.com", Message: "Sorry about the coffee!"}, mailer.replies[0])

	require.NotEmpty(t, seenAtDelivery.Activity)
	assert.Equal(t, models.ActivityEmail, seenAtDelivery.Activity[0].Type)

	stored := fx.get(t, f.ID)
	assert.Equal(t, "Reply sent to customer", stored.Activity[0].Message)
	assert.Equal(t, models.EmailDetail{To: "guest@example.com", Message: "Sorry about the coffee!"}, stored.Activity[0].Detail)
	assert.Equal(t, receipt.ActivityID, stored.Activity[0].ID)
	assert.Equal(t, models.StatusNew, stored.Status())
	assert.False(t, stored.UpdatedAt.IsZero())
}

func TestSendReply_NotFound(t *testing.T) {
	mailer := &mockMailer{}
	fx := setupEngine(t, WithMailer(mailer))

	receipt, err := fx.engine.SendReply(context.Background(), "missing", "a@b.com", "hi")
	require.NoError(t, err)
	assert.False(t, receipt.Found)
	assert.Empty(t, mailer.replies)
}

func TestSendReply_WithoutMailer(t *testing.T) {
	fx := setupEngine(t)
	f := fx.add(t, "b1", 2, "")

	receipt, err := fx.engine.SendReply(context.Background(), f.ID, "guest@example.com", "Thanks")
	require.NoError(t, err)
	assert.True(t, receipt.Mutated)
	assert.False(t, receipt.Delivered)
}

func TestSendReply_DeliveryFailureKeepsTimeline(t *testing.T) {
	mailer := &mockMailer{err: stderrors.New("ses throttled")}
	fx := setupEngine(t, WithMailer(mailer))
	f := fx.add(t, "b1", 2, "")

	receipt, err := fx.engine.SendReply(context.Background(), f.ID, "guest@example.com", "Thanks")
	assert.True(t, errors.HasCode(err, errors.ErrCodeReplyDeliveryFailed))
	assert.True(t, receipt.Found)
	assert.False(t, receipt.Delivered)

	stderr, ok := errors.As(err)
	require.True(t, ok)
	assert.False(t, stderr.Retryable)

	stored := fx.get(t, f.ID)
	require.Len(t, stored.Activity, 2)
	assert.Equal(t, models.ActivityEmail, stored.Activity[0].Type)
	assert.Equal(t, receipt.ActivityID, stored.Activity[0].ID)
	assert.Equal(t, "Reply delivery failed", stored.Activity[0].Message)
	assert.Equal(t, models.EmailDetail{To: "guest@example.com", Message: "Thanks"}, stored.Activity[0].Detail)
}

func TestSendReply_WaitsForDelay(t *testing.T) {
	fx := setupEngine(t)
	fx.engine.replyDelay = 30 * time.Millisecond
	f := fx.add(t, "b1", 2, "")

	start := time.Now()
	_, err := fx.engine.SendReply(context.Background(), f.ID, "guest@example.com", "Thanks")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestSendReply_CancelledDuringDelay(t *testing.T) {
	fx := setupEngine(t)
	fx.engine.replyDelay = time.Hour
	f := fx.add(t, "b1", 2, "")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := fx.engine.SendReply(ctx, f.ID, "guest@example.com", "Thanks")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, models.ActivityEmail, fx.get(t, f.ID).Activity[0].Type)
}

func TestSendReply_CancelledBeforeWrite(t *testing.T) {
	fx := setupEngine(t)
	f := fx.add(t, "b1", 2, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fx.engine.SendReply(ctx, f.ID, "guest@example.com", "Thanks")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, fx.get(t, f.ID).Activity, 1)
}
