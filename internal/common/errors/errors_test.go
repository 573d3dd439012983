package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_Wrapping(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewStorageWriteError("rf_feedback", cause)

	assert.True(t, err.Retryable)
	assert.Equal(t, ErrCodeStorageWriteFailed, err.Code)
	assert.Contains(t, err.Details, "rf_feedback")
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("save feedback: %w", err)
	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, err, got)
	assert.True(t, HasCode(wrapped, ErrCodeStorageWriteFailed))
	assert.False(t, HasCode(cause, ErrCodeStorageWriteFailed))
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name            string
		err             *StandardError
		expectedCode    string
		expectedRetries int
	}{
		{
			name:            "storage failure is retried",
			err:             NewStorageReadError("rf_events", stderrors.New("timeout")),
			expectedCode:    "STORAGE_UNAVAILABLE",
			expectedRetries: 3,
		},
		{
			name:            "invalid rating maps to input error",
			err:             NewInvalidRatingError(7),
			expectedCode:    "INVALID_INPUT",
			expectedRetries: 0,
		},
		{
			name:            "reply delivery is thrown, not retried",
			err:             NewReplyDeliveryError(stderrors.New("ses throttled")),
			expectedCode:    "REPLY_DELIVERY_FAILED",
			expectedRetries: 0,
		},
		{
			name:            "unmapped code is thrown unchanged",
			err:             NewSlugUnavailableError("sunrise-cafe"),
			expectedCode:    "SLUG_UNAVAILABLE",
			expectedRetries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.expectedCode, bpmn.Code)
			assert.Equal(t, tt.expectedRetries, bpmn.Retries)
			vars := bpmn.ToErrorVariables()
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
			assert.Equal(t, tt.expectedCode, vars["errorCode"])
		})
	}
}

func TestNormalize(t *testing.T) {
	std := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, std.Code)
	assert.False(t, std.Retryable)

	original := NewBusinessNotFoundError("nope")
	assert.Same(t, original, Normalize(fmt.Errorf("wrap: %w", original)))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeStorageCorrupt))
	assert.Equal(t, "LOOKUP", GetErrorCategory(ErrCodeBusinessNotFound))
	assert.Equal(t, "LOOKUP", GetErrorCategory(ErrCodeSourceUnavailable))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidRating))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeReplyDeliveryFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexWriteFailed))
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeUnauthorized))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestWithMetadata(t *testing.T) {
	err := NewValidationError("rating required").WithMetadata("field", "rating")
	assert.Equal(t, "rating", err.Metadata["field"])
	assert.False(t, IsRetryableErrorCode(err.Code))
	assert.True(t, IsRetryableErrorCode(ErrCodeAlertPublishFailed))
}
