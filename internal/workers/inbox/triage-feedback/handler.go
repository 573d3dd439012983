package triagefeedback

import (
	"context"

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
)

const (
	TaskType = registry.TaskTriageFeedback
)

type Handler struct {
	config    *Config
	engine    *feedback.Engine
	deletes   *feedback.DeleteScheduler
	schema    validation.JSONSchema
	jobErrors *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, engine *feedback.Engine, deletes *feedback.DeleteScheduler, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	if config.Timeout <= 0 {
		config.Timeout = LoadConfig().Timeout
	}
	return &Handler{
		config:    config,
		engine:    engine,
		deletes:   deletes,
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
	single := in.Action != ActionMarkAllRead && in.Action != ActionBulkStatus &&
		in.Action != ActionDelete && in.Action != ActionUndoDelete
	needsStatus := in.Action == ActionSetStatus || in.Action == ActionBulkStatus
	many := in.Action == ActionBulkStatus || in.Action == ActionDelete

	err := ozzo.ValidateStruct(in,
		ozzo.Field(&in.Action, ozzo.Required, ozzo.In(stringsToAny(registry.TriageActions)...)),
		ozzo.Field(&in.FeedbackID, ozzo.When(single, ozzo.Required)),
		ozzo.Field(&in.Status, ozzo.When(needsStatus, ozzo.Required, ozzo.By(validStatus))),
		ozzo.Field(&in.Note, ozzo.When(in.Action == ActionAddNote, ozzo.Required)),
	)
	if err == nil && many && len(in.ids()) == 0 {
		err = ozzo.Errors{"feedbackIds": ozzo.NewError("validation_required", "cannot be blank")}
	}
	if err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}

func validStatus(value interface{}) error {
	s, _ := value.(models.Status)
	if !s.Valid() || s == models.StatusReviewed {
		return ozzo.NewError("validation_status", "must be a known status")
	}
	return nil
}

func stringsToAny(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func (h *Handler) execute(ctx context.Context, in *Input) (*Output, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	out := &Output{Action: in.Action}
	var err error
	switch in.Action {
	case ActionSetStatus, ActionUndo, ActionToggleFlag, ActionMarkRead, ActionAddNote:
		err = h.single(ctx, in, out)
	case ActionMarkAllRead:
		err = h.markAllRead(ctx, in, out)
	case ActionBulkStatus:
		err = h.bulkStatus(ctx, in, out)
	case ActionDelete:
		err = h.delete(ctx, in, out)
	case ActionUndoDelete:
		err = h.undoDelete(ctx, in, out)
	}
	if err != nil {
		return nil, err
	}

	if h.deletes != nil {
		out.PendingDeletes = len(h.deletes.Pending(undoScope(in.Session)))
	}
	h.logger.Info("triage applied", map[string]interface{}{
		"action":  in.Action,
		"found":   out.Found,
		"mutated": out.Mutated,
		"count":   out.Count,
	})
	return out, nil
}

func (h *Handler) single(ctx context.Context, in *Input, out *Output) error {
	f, found, err := h.engine.Get(ctx, in.FeedbackID)
	if err != nil || !found {
		return err
	}
	if err := access.Authorize(in.Session, f.BusinessID); err != nil {
		return err
	}

	var res feedback.Result
	switch in.Action {
	case ActionSetStatus:
		res, err = h.engine.UpdateStatus(ctx, in.FeedbackID, in.Status)
	case ActionUndo:
		res, err = h.engine.Undo(ctx, in.FeedbackID)
	case ActionToggleFlag:
		res, err = h.engine.ToggleFlag(ctx, in.FeedbackID)
	case ActionMarkRead:
		isRead := true
		if in.IsRead != nil {
			isRead = *in.IsRead
		}
		res, err = h.engine.MarkRead(ctx, in.FeedbackID, isRead)
	case ActionAddNote:
		res, err = h.engine.AddNote(ctx, in.FeedbackID, in.Note)
	}
	if err != nil {
		return err
	}

	out.Found, out.Mutated = res.Found, res.Mutated
	if res.Mutated {
		out.Count = 1
	}
	if after, ok, err := h.engine.Get(ctx, in.FeedbackID); err == nil && ok {
		out.Status = string(after.Status())
	}
	return nil
}

func (h *Handler) markAllRead(ctx context.Context, in *Input, out *Output) error {
	businessID := in.BusinessID
	if businessID == "" && !in.Session.IsSuper() {
		businessID = in.Session.BusinessID
	}
	if businessID != "" {
		if err := access.Authorize(in.Session, businessID); err != nil {
			return err
		}
	} else if !in.Session.IsSuper() {
		return errors.NewUnauthorizedError("only super operators can mark every inbox read")
	}

	n, err := h.engine.MarkAllRead(ctx, businessID)
	if err != nil {
		return err
	}
	out.Found, out.Mutated, out.Count = true, n > 0, n
	return nil
}

// authorizeMany returns the ids that exist, failing if any belongs to a
// business the session cannot manage.
func (h *Handler) authorizeMany(ctx context.Context, s models.Session, ids []string) ([]string, error) {
	existing := make([]string, 0, len(ids))
	for _, id := range ids {
		f, found, err := h.engine.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		if err := access.Authorize(s, f.BusinessID); err != nil {
			return nil, err
		}
		existing = append(existing, id)
	}
	return existing, nil
}

func (h *Handler) bulkStatus(ctx context.Context, in *Input, out *Output) error {
	ids, err := h.authorizeMany(ctx, in.Session, in.ids())
	if err != nil {
		return err
	}
	n, err := h.engine.BulkUpdateStatus(ctx, ids, in.Status)
	if err != nil {
		return err
	}
	out.Found, out.Mutated, out.Count = len(ids) > 0, n > 0, n
	out.Status = string(in.Status)
	return nil
}

func (h *Handler) delete(ctx context.Context, in *Input, out *Output) error {
	ids, err := h.authorizeMany(ctx, in.Session, in.ids())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	var removed []models.Feedback
	if h.deletes != nil {
		removed, err = h.deletes.Delete(ctx, undoScope(in.Session), ids)
	} else {
		removed, err = h.engine.BulkDelete(ctx, ids)
	}
	if err != nil {
		return err
	}
	out.Found, out.Mutated, out.Count = true, len(removed) > 0, len(removed)
	return nil
}

func (h *Handler) undoDelete(ctx context.Context, in *Input, out *Output) error {
	if h.deletes == nil {
		return nil
	}
	scope := undoScope(in.Session)
	for _, f := range h.deletes.Pending(scope) {
		if err := access.Authorize(in.Session, f.BusinessID); err != nil {
			return err
		}
	}
	n, err := h.deletes.Undo(ctx, scope)
	if err != nil {
		return err
	}
	out.Found, out.Mutated, out.Count = n > 0, n > 0, n
	return nil
}

// undoScope is the inbox a session's deletes are held under: the managed
// business, or the platform inbox for a super operator.
func undoScope(s models.Session) string {
	if s.BusinessID != "" {
		return s.BusinessID
	}
	return string(models.RoleSuper)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
