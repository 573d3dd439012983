package sendreply

import (
	"context"
	stderrors "errors"
	"testing"

	"reviewgate/internal/access"
	"reviewgate/internal/common/config"
	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/events"
	"reviewgate/internal/feedback"
	"reviewgate/internal/models"
	"reviewgate/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Mailer
// ==========================

type MockMailer struct {
	SendReplyFunc func(ctx context.Context, reply feedback.Reply) error
	Sent          []feedback.Reply
}

func (m *MockMailer) SendReply(ctx context.Context, reply feedback.Reply) error {
	m.Sent = append(m.Sent, reply)
	if m.SendReplyFunc != nil {
		return m.SendReplyFunc(ctx, reply)
	}
	return nil
}

// ==========================
// Test Helper Functions
// ==========================

func setup(t *testing.T, cfg *Config, mailer *MockMailer) (*Handler, *feedback.Engine, models.Feedback) {
	t.Helper()
	log := logger.NewTestLogger(t)
	parts := storage.NewPartitions(storage.NewMemoryStore(), "", log)
	var opts []feedback.Option
	if mailer != nil {
		opts = append(opts, feedback.WithMailer(mailer))
	}
	engine := feedback.NewEngine(parts, events.NewRecorder(parts, nil, log), config.FeedbackConfig{}, log, opts...)
	f, err := engine.Add(context.Background(), models.NewFeedback{
		BusinessID: "b1", Rating: 1, Comment: "Long wait", Name: "Dana", Email: "dana@example.com",
	})
	require.NoError(t, err)
	return NewHandler(cfg, engine, log), engine, f
}

func validInput(id string) *Input {
	return &Input{
		FeedbackID: id,
		To:         "dana@example.com",
		Message:    "Sorry about the wait, your next coffee is on us.",
		Session:    access.AdminSession("b1"),
	}
}

// ==========================
// Execute
// ==========================

func TestExecute_DeliversAndRecords(t *testing.T) {
	mailer := &MockMailer{}
	h, engine, f := setup(t, &Config{}, mailer)

	out, err := h.Execute(context.Background(), validInput(f.ID))
	require.NoError(t, err)
	assert.True(t, out.Delivered)
	assert.False(t, out.Resolved)
	assert.NotEmpty(t, out.ActivityID)
	assert.False(t, out.CompletedAt.IsZero())

	require.Len(t, mailer.Sent, 1)
	assert.Equal(t, "Dana", mailer.Sent[0].CustomerName)
	assert.Equal(t, "b1", mailer.Sent[0].BusinessID)

	got, _, err := engine.Get(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, out.ActivityID, got.Activity[0].ID)
	assert.Equal(t, models.ActivityEmail, got.Activity[0].Type)
	assert.Equal(t, models.StatusNew, got.Status())
}

func TestExecute_ResolveOnReply(t *testing.T) {
	h, engine, f := setup(t, &Config{ResolveOnReply: true}, nil)

	out, err := h.Execute(context.Background(), validInput(f.ID))
	require.NoError(t, err)
	assert.False(t, out.Delivered)
	assert.True(t, out.Resolved)

	got, _, err := engine.Get(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, got.Status())
}

func TestExecute_DeliveryFailureKeepsActivity(t *testing.T) {
	mailer := &MockMailer{SendReplyFunc: func(context.Context, feedback.Reply) error {
		return stderrors.New("throttled")
	}}
	h, engine, f := setup(t, &Config{ResolveOnReply: true}, mailer)

	_, err := h.Execute(context.Background(), validInput(f.ID))
	assert.True(t, errors.HasCode(err, errors.ErrCodeReplyDeliveryFailed))

	got, _, err := engine.Get(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActivityEmail, got.Activity[0].Type)
	assert.Equal(t, "Reply delivery failed", got.Activity[0].Message)
	assert.Equal(t, models.StatusNew, got.Status())
}

func TestExecute_DeliveryFailureIsNotRetried(t *testing.T) {
	mailer := &MockMailer{SendReplyFunc: func(context.Context, feedback.Reply) error {
		return stderrors.New("throttled")
	}}
	h, engine, f := setup(t, &Config{}, mailer)

	_, err := h.Execute(context.Background(), validInput(f.ID))
	require.Error(t, err)

	// The job error handler fails with retries only when Retries > 0.
	bpmn := errors.ConvertToBPMNError(errors.Normalize(err))
	assert.False(t, bpmn.Retryable)
	assert.Zero(t, bpmn.Retries)
	assert.Equal(t, "REPLY_DELIVERY_FAILED", bpmn.Code)

	got, _, err := engine.Get(context.Background(), f.ID)
	require.NoError(t, err)
	emails := 0
	for _, a := range got.Activity {
		if a.Type == models.ActivityEmail {
			emails++
		}
	}
	assert.Equal(t, 1, emails)
	assert.Len(t, mailer.Sent, 1)
}

func TestExecute_Errors(t *testing.T) {
	h, _, f := setup(t, &Config{}, nil)

	tests := []struct {
		name   string
		mutate func(in *Input)
		code   errors.ErrorCode
	}{
		{"missing record", func(in *Input) { in.FeedbackID = "missing" }, errors.ErrCodeFeedbackNotFound},
		{"other business", func(in *Input) { in.Session = access.AdminSession("b2") }, errors.ErrCodeUnauthorized},
		{"bad address", func(in *Input) { in.To = "not-an-email" }, errors.ErrCodeValidationFailed},
		{"blank message", func(in *Input) { in.Message = "   " }, errors.ErrCodeValidationFailed},
		{"no id", func(in *Input) { in.FeedbackID = "" }, errors.ErrCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(f.ID)
			tt.mutate(in)
			_, err := h.Execute(context.Background(), in)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestExecute_SuperCanReplyAnywhere(t *testing.T) {
	h, _, f := setup(t, &Config{}, nil)
	in := validInput(f.ID)
	in.Session = access.SuperSession()

	_, err := h.Execute(context.Background(), in)
	assert.NoError(t, err)
}
