package feedbackalert

import (
	"context"

	"reviewgate/internal/common/camunda"
	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/validation"
	"reviewgate/internal/mail"
	"reviewgate/internal/models"
	"reviewgate/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = registry.TaskFeedbackAlert
)

type FeedbackLookup interface {
	Get(ctx context.Context, id string) (models.Feedback, bool, error)
}

type BusinessLookup interface {
	ByID(ctx context.Context, id string) (models.Business, bool, error)
}

type Notifier interface {
	NotifyLowRating(ctx context.Context, b models.Business, f models.Feedback) (mail.AlertReceipt, error)
}

type Handler struct {
	config    *Config
	feedback  FeedbackLookup
	directory BusinessLookup
	notifier  Notifier
	schema    validation.JSONSchema
	jobErrors *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, feedback FeedbackLookup, directory BusinessLookup, notifier Notifier, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	if config.Timeout <= 0 {
		config.Timeout = LoadConfig().Timeout
	}
	return &Handler{
		config:    config,
		feedback:  feedback,
		directory: directory,
		notifier:  notifier,
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

func (h *Handler) execute(ctx context.Context, in *Input) (*Output, error) {
	if in.FeedbackID == "" {
		return nil, errors.NewValidationError("feedbackId: cannot be blank.")
	}

	f, found, err := h.feedback.Get(ctx, in.FeedbackID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewFeedbackNotFoundError(in.FeedbackID)
	}

	b, found, err := h.directory.ByID(ctx, f.BusinessID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewBusinessNotFoundError(f.BusinessID)
	}

	receipt, err := h.notifier.NotifyLowRating(ctx, b, f)
	if err != nil {
		return nil, err
	}

	h.logger.Info("alert processed", map[string]interface{}{
		"feedbackId": f.ID,
		"businessId": b.ID,
		"skipped":    receipt.Skipped,
		"channels":   receipt.Channels,
	})
	return &Output{
		FeedbackID: f.ID,
		BusinessID: b.ID,
		Skipped:    receipt.Skipped,
		Channels:   receipt.Channels,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
