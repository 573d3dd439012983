package submitfeedback

import (
	"context"

	"reviewgate/internal/common/camunda"
	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/validation"
	"reviewgate/internal/funnel"
	"reviewgate/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = registry.TaskSubmitFeedback
)

type FeedbackFlow interface {
	Submit(ctx context.Context, slug string, s funnel.Submission) (funnel.Receipt, error)
}

type Handler struct {
	config    *Config
	flow      FeedbackFlow
	schema    validation.JSONSchema
	jobErrors *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, flow FeedbackFlow, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	if config.Timeout <= 0 {
		config.Timeout = LoadConfig().Timeout
	}
	return &Handler{
		config:    config,
		flow:      flow,
		schema:    registry.MustInput(TaskType),
		jobErrors: errors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.process(ctx, job)
	if err != nil {
		h.jobErrors.HandleJobError(ctx, client, job, err)
		return err
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

func (h *Handler) process(ctx context.Context, job entities.Job) (*Output, error) {
	var input Input
	if err := camunda.DecodeJob(job, h.schema, &input); err != nil {
		return nil, err
	}
	return h.execute(ctx, &input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	receipt, err := h.flow.Submit(ctx, input.Slug, funnel.Submission{
		Rating:  input.Rating,
		Comment: input.Comment,
		Name:    input.Name,
		Email:   input.Email,
		Photos:  input.Photos,
		Answers: input.Answers,
		Source:  input.Source,
	})
	if err != nil {
		return nil, err
	}

	f := receipt.Feedback
	h.logger.Info("feedback stored", map[string]interface{}{
		"feedbackId": f.ID,
		"businessId": f.BusinessID,
		"rating":     f.Rating,
	})

	return &Output{
		FeedbackID:      f.ID,
		BusinessID:      f.BusinessID,
		Rating:          f.Rating,
		Status:          string(f.Status()),
		Source:          f.Source,
		ExitRedirectURL: receipt.ExitRedirectURL,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
