package sendreply

import (
	"context"
	"strings"

	"reviewgate/internal/access"
	"reviewgate/internal/common/camunda"
	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/validation"
	"reviewgate/internal/feedback"
	"reviewgate/internal/models"
	"reviewgate/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	TaskType = registry.TaskSendReply
)

type Handler struct {
	config    *Config
	engine    *feedback.Engine
	schema    validation.JSONSchema
	jobErrors *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, engine *feedback.Engine, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	if config.Timeout <= 0 {
		config.Timeout = LoadConfig().Timeout
	}
	return &Handler{
		config:    config,
		engine:    engine,
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

func validateInput(in *Input) error {
	in.To = strings.TrimSpace(in.To)
	in.Message = strings.TrimSpace(in.Message)
	err := ozzo.ValidateStruct(in,
		ozzo.Field(&in.FeedbackID, ozzo.Required),
		ozzo.Field(&in.To, ozzo.Required, is.EmailFormat),
		ozzo.Field(&in.Message, ozzo.Required),
	)
	if err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}

func (h *Handler) execute(ctx context.Context, in *Input) (*Output, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	f, found, err := h.engine.Get(ctx, in.FeedbackID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewFeedbackNotFoundError(in.FeedbackID)
	}
	if err := access.Authorize(in.Session, f.BusinessID); err != nil {
		return nil, err
	}

	receipt, err := h.engine.SendReply(ctx, in.FeedbackID, in.To, in.Message)
	if err != nil {
		return nil, err
	}
	if !receipt.Found {
		// Deleted between the lookup and the write.
		return nil, errors.NewFeedbackNotFoundError(in.FeedbackID)
	}

	out := &Output{
		FeedbackID:  in.FeedbackID,
		ActivityID:  receipt.ActivityID,
		To:          receipt.To,
		Delivered:   receipt.Delivered,
		CompletedAt: receipt.CompletedAt,
	}

	if h.config.ResolveOnReply && f.Status() != models.StatusResolved {
		res, err := h.engine.UpdateStatus(ctx, in.FeedbackID, models.StatusResolved)
		if err != nil {
			return nil, err
		}
		out.Resolved = res.Mutated
	}

	h.logger.Info("reply sent", map[string]interface{}{
		"feedbackId": in.FeedbackID,
		"delivered":  out.Delivered,
		"resolved":   out.Resolved,
	})
	return out, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
