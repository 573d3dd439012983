package submitrating

import (
	"context"

	"reviewgate/internal/common/camunda"
	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/validation"
	"reviewgate/internal/funnel"
	"reviewgate/internal/models"
	"reviewgate/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = registry.TaskSubmitRating
)

// RatingFlow is the part of the public flow this worker drives.
type RatingFlow interface {
	Visit(ctx context.Context, slug, source string) (models.Business, error)
	Rate(ctx context.Context, slug string, rating int, source string) (funnel.Decision, error)
}

type Handler struct {
	config    *Config
	flow      RatingFlow
	schema    validation.JSONSchema
	jobErrors *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, flow RatingFlow, log logger.Logger) *Handler {
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
	var name string
	if input.RecordScan {
		b, err := h.flow.Visit(ctx, input.Slug, input.Source)
		if err != nil {
			return nil, err
		}
		name = b.Name
	}

	d, err := h.flow.Rate(ctx, input.Slug, input.Rating, input.Source)
	if err != nil {
		return nil, err
	}

	h.logger.Info("rating routed", map[string]interface{}{
		"businessId": d.BusinessID,
		"rating":     d.Rating,
		"outcome":    string(d.Outcome),
	})

	return &Output{
		Outcome:      string(d.Outcome),
		BusinessID:   d.BusinessID,
		BusinessName: name,
		Rating:       d.Rating,
		Source:       d.Source,
		RedirectURL:  d.RedirectURL,
		Questions:    d.Questions,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
