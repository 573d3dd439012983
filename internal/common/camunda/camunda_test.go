package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"reviewgate/internal/common/config"
	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Retry and error mapping
// ==========================

func testClient(t *testing.T) *Client {
	return &Client{
		config: &ClientConfig{RetryConfig: &RetryConfig{
			MaxRetries: 2,
			BaseDelay:  time.Millisecond,
			MaxDelay:   2 * time.Millisecond,
		}},
		log: logger.NewTestLogger(t),
	}
}

func TestExecuteWithRetry_RecoversFromTransientErrors(t *testing.T) {
	c := testClient(t)
	calls := 0
	err := c.ExecuteWithRetry(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return stderrors.New("rpc error: code = Unavailable")
		}
		return nil
	}, "topology")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	c := testClient(t)
	calls := 0
	err := c.ExecuteWithRetry(context.Background(), func(context.Context) error {
		calls++
		return stderrors.New("connection refused")
	}, "topology")

	assert.Equal(t, 3, calls)
	assert.True(t, errors.HasCode(err, "EXTERNAL_SERVICE_ERROR"))
}

func TestExecuteWithRetry_PermanentErrorNotRetried(t *testing.T) {
	c := testClient(t)
	calls := 0
	err := c.ExecuteWithRetry(context.Background(), func(context.Context) error {
		calls++
		return stderrors.New("permission denied")
	}, "topology")

	assert.Equal(t, 1, calls)
	assert.True(t, errors.HasCode(err, "AUTHENTICATION_ERROR"))
}

func TestExecuteWithRetry_Cancelled(t *testing.T) {
	c := testClient(t)
	c.config.RetryConfig.BaseDelay = time.Hour
	c.config.RetryConfig.MaxDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.ExecuteWithRetry(ctx, func(context.Context) error {
		return stderrors.New("timeout")
	}, "topology")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		code errors.ErrorCode
	}{
		{"context deadline exceeded", "TIMEOUT_ERROR"},
		{"process definition not found", "RESOURCE_NOT_FOUND"},
		{"unauthorized", "AUTHENTICATION_ERROR"},
		{"broken pipe", "EXTERNAL_SERVICE_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := mapZeebeError(stderrors.New(tt.msg), "op", 0)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500", Timeout: 1500, RequestTimeout: 3000})
	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.Equal(t, 1500*time.Millisecond, cfg.ConnectionTimeout)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.UsePlaintextConnection)
}

// ==========================
// Job instrumentation
// ==========================

type handlerFunc func(worker.JobClient, entities.Job) error

func (f handlerFunc) Handle(c worker.JobClient, j entities.Job) error { return f(c, j) }

type recordedJob struct {
	taskType, status string
}

type mockRecorder struct {
	processed []recordedJob
	durations int
}

func (m *mockRecorder) RecordJobProcessed(_ context.Context, taskType, status string) {
	m.processed = append(m.processed, recordedJob{taskType, status})
}

func (m *mockRecorder) RecordJobDuration(context.Context, string, time.Duration, string) {
	m.durations++
}

func TestInstrument(t *testing.T) {
	rec := &mockRecorder{}
	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Type: "feedback-triage"}}

	ok := instrument("feedback-triage", handlerFunc(func(worker.JobClient, entities.Job) error {
		return nil
	}), rec, logger.NewTestLogger(t))
	failing := instrument("feedback-triage", handlerFunc(func(_ worker.JobClient, j entities.Job) error {
		assert.Equal(t, int64(42), j.Key)
		return errors.NewFeedbackNotFoundError("f1")
	}), rec, logger.NewTestLogger(t))

	ok(nil, job)
	failing(nil, job)

	assert.Equal(t, []recordedJob{
		{"feedback-triage", "completed"},
		{"feedback-triage", "failed"},
	}, rec.processed)
	assert.Equal(t, 2, rec.durations)
}

// ==========================
// Variable decoding
// ==========================

func TestDecodeVariables(t *testing.T) {
	schema := validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"feedbackId": {Type: "string", MinLength: validation.Int(1)},
		},
		Required: []string{"feedbackId"},
	}
	var out struct {
		FeedbackID string `json:"feedbackId"`
	}

	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Variables: `{"feedbackId":"f1","other":1}`}}
	require.NoError(t, DecodeJob(job, schema, &out))
	assert.Equal(t, "f1", out.FeedbackID)

	err := DecodeVariables(`{"feedbackId":""}`, schema, &out)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))

	err = DecodeVariables("", schema, &out)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))

	err = DecodeVariables(`{"feedbackId":`, schema, &out)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
}
