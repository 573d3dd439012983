package feedbackalert

import (
	"context"
	stderrors "errors"
	"testing"

	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/mail"
	"reviewgate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type MockFeedback struct {
	GetFunc func(ctx context.Context, id string) (models.Feedback, bool, error)
}

func (m *MockFeedback) Get(ctx context.Context, id string) (models.Feedback, bool, error) {
	return m.GetFunc(ctx, id)
}

type MockDirectory struct {
	ByIDFunc func(ctx context.Context, id string) (models.Business, bool, error)
}

func (m *MockDirectory) ByID(ctx context.Context, id string) (models.Business, bool, error) {
	return m.ByIDFunc(ctx, id)
}

type MockNotifier struct {
	NotifyFunc func(ctx context.Context, b models.Business, f models.Feedback) (mail.AlertReceipt, error)
	calls      int
}

func (m *MockNotifier) NotifyLowRating(ctx context.Context, b models.Business, f models.Feedback) (mail.AlertReceipt, error) {
	m.calls++
	return m.NotifyFunc(ctx, b, f)
}

// ==========================
// Test Helper Functions
// ==========================

func knownFeedback() *MockFeedback {
	return &MockFeedback{GetFunc: func(_ context.Context, id string) (models.Feedback, bool, error) {
		if id != "f1" {
			return models.Feedback{}, false, nil
		}
		return models.Feedback{ID: "f1", BusinessID: "b1", Rating: 2}, true, nil
	}}
}

func knownDirectory() *MockDirectory {
	return &MockDirectory{ByIDFunc: func(_ context.Context, id string) (models.Business, bool, error) {
		if id != "b1" {
			return models.Business{}, false, nil
		}
		return models.Business{ID: "b1", Name: "Sunrise Cafe"}, true, nil
	}}
}

func sentOn(channels ...string) *MockNotifier {
	return &MockNotifier{NotifyFunc: func(context.Context, models.Business, models.Feedback) (mail.AlertReceipt, error) {
		return mail.AlertReceipt{Channels: channels}, nil
	}}
}

// ==========================
// Execute
// ==========================

func TestExecute_SendsAlert(t *testing.T) {
	notifier := sentOn(mail.ChannelEmail, mail.ChannelTopic)
	h := NewHandler(&Config{}, knownFeedback(), knownDirectory(), notifier, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{FeedbackID: "f1"})
	require.NoError(t, err)
	assert.Equal(t, "b1", out.BusinessID)
	assert.False(t, out.Skipped)
	assert.Equal(t, []string{mail.ChannelEmail, mail.ChannelTopic}, out.Channels)
	assert.Equal(t, 1, notifier.calls)
}

func TestExecute_Failures(t *testing.T) {
	boom := stderrors.New("boom")

	tests := []struct {
		name      string
		input     Input
		feedback  *MockFeedback
		directory *MockDirectory
		notifier  *MockNotifier
		code      errors.ErrorCode
	}{
		{
			name:      "blank id",
			input:     Input{},
			feedback:  knownFeedback(),
			directory: knownDirectory(),
			notifier:  sentOn(),
			code:      errors.ErrCodeValidationFailed,
		},
		{
			name:      "unknown feedback",
			input:     Input{FeedbackID: "f9"},
			feedback:  knownFeedback(),
			directory: knownDirectory(),
			notifier:  sentOn(),
			code:      errors.ErrCodeFeedbackNotFound,
		},
		{
			name:     "unknown business",
			input:    Input{FeedbackID: "f1"},
			feedback: knownFeedback(),
			directory: &MockDirectory{ByIDFunc: func(context.Context, string) (models.Business, bool, error) {
				return models.Business{}, false, nil
			}},
			notifier: sentOn(),
			code:     errors.ErrCodeBusinessNotFound,
		},
		{
			name:      "publish failure",
			input:     Input{FeedbackID: "f1"},
			feedback:  knownFeedback(),
			directory: knownDirectory(),
			notifier: &MockNotifier{NotifyFunc: func(context.Context, models.Business, models.Feedback) (mail.AlertReceipt, error) {
				return mail.AlertReceipt{}, errors.NewAlertPublishError(mail.ChannelSMS, boom)
			}},
			code: errors.ErrCodeAlertPublishFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&Config{}, tt.feedback, tt.directory, tt.notifier, logger.NewTestLogger(t))
			_, err := h.Execute(context.Background(), &tt.input)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestExecute_StorageErrorPassesThrough(t *testing.T) {
	readErr := errors.NewStorageReadError("feedback", stderrors.New("conn reset"))
	fb := &MockFeedback{GetFunc: func(context.Context, string) (models.Feedback, bool, error) {
		return models.Feedback{}, false, readErr
	}}
	notifier := sentOn()
	h := NewHandler(&Config{}, fb, knownDirectory(), notifier, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{FeedbackID: "f1"})
	assert.Equal(t, readErr, err)
	assert.Zero(t, notifier.calls)
}
