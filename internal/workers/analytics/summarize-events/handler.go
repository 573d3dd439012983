package summarizeevents

import (
	"context"
	"time"

	"reviewgate/internal/access"
	"reviewgate/internal/common/camunda"
	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/validation"
	"reviewgate/internal/events"
	"reviewgate/internal/models"
	"reviewgate/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = registry.TaskSummarize
)

const day = 24 * time.Hour

type EventLister interface {
	List(ctx context.Context, businessID string) ([]models.ReviewEvent, error)
}

type LabelSource interface {
	Labels(ctx context.Context, businessID string) (map[string]string, error)
}

type Handler struct {
	config    *Config
	events    EventLister
	labels    LabelSource
	schema    validation.JSONSchema
	jobErrors *errors.ErrorHandler
	logger    logger.Logger
	now       func() time.Time
}

// NewHandler creates the handler. labels may be nil, in which case sources
// are reported without link labels.
func NewHandler(config *Config, events EventLister, labels LabelSource, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	defaults := LoadConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.Window <= 0 {
		config.Window = defaults.Window
	}
	return &Handler{
		config:    config,
		events:    events,
		labels:    labels,
		schema:    registry.MustInput(TaskType),
		jobErrors: errors.NewErrorHandler(log),
		logger:    log,
		now:       time.Now,
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

// scope resolves the business a session may summarize. Admins default to
// their own business; only super operators may summarize every business.
func scope(s models.Session, businessID string) (string, error) {
	if businessID == "" && !s.IsSuper() {
		businessID = s.BusinessID
	}
	if businessID == "" {
		if !s.IsSuper() {
			return "", errors.NewUnauthorizedError("only super operators can summarize every business")
		}
		return "", nil
	}
	return businessID, access.Authorize(s, businessID)
}

func (h *Handler) execute(ctx context.Context, in *Input) (*Output, error) {
	businessID, err := scope(in.Session, in.BusinessID)
	if err != nil {
		return nil, err
	}

	window := h.config.Window
	if in.WindowDays > 0 {
		window = time.Duration(in.WindowDays) * day
	}

	list, err := h.events.List(ctx, businessID)
	if err != nil {
		return nil, err
	}
	summary := events.Summarize(list, h.now().UTC(), window, in.Recent)

	if h.labels != nil {
		labels, err := h.labels.Labels(ctx, businessID)
		if err != nil {
			return nil, err
		}
		summary.Label(labels)
	}

	h.logger.Debug("events summarized", map[string]interface{}{
		"businessId": businessID,
		"scans":      summary.Scans,
		"rated":      summary.Rated,
	})
	return &Output{
		BusinessID: businessID,
		WindowDays: int(window / day),
		Summary:    summary,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
