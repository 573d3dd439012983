// Package feedback is the inbox state machine: it creates feedback records,
// moves them between statuses, keeps their activity timelines and emits the
// internal attribution event for every new submission.
//
// Lookups that miss never fail; they report Result{Found: false}. Storage
// failures are returned as *errors.StandardError values.
package feedback

import (
	"context"
	"time"

	"reviewgate/internal/common/config"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/metrics"
	"reviewgate/internal/ident"
	"reviewgate/internal/models"
	"reviewgate/internal/normalize"
	"reviewgate/internal/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "reviewgate/internal/feedback"

// Result distinguishes "not found" from "found but nothing changed".
type Result struct {
	Found   bool
	Mutated bool
}

// EventRecorder receives the internal event written for each submission.
type EventRecorder interface {
	RecordInternal(ctx context.Context, businessID string, rating int, source string) (models.ReviewEvent, error)
}

// Engine owns the feedback partition.
type Engine struct {
	items      *normalize.Collection[models.Feedback]
	events     EventRecorder
	mailer     Mailer
	replyDelay time.Duration
	tracer     trace.Tracer
	log        logger.Logger
	now        func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithMailer hands replies to m after they are recorded.
func WithMailer(m Mailer) Option {
	return func(e *Engine) { e.mailer = m }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// NewEngine creates an Engine over the feedback partition.
func NewEngine(parts *storage.Partitions, events EventRecorder, cfg config.FeedbackConfig, log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		items:      normalize.NewCollection(parts, storage.PartitionFeedback, normalize.DecodeFeedback),
		events:     events,
		replyDelay: cfg.ReplyDelayDuration(),
		tracer:     otel.Tracer(tracerName),
		log:        logger.Component(log, "feedback"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Add stores a new feedback record and records the matching internal event.
// The record starts as new and unread with a single created activity. A failed
// event write is logged; the stored record is still returned.
func (e *Engine) Add(ctx context.Context, in models.NewFeedback) (models.Feedback, error) {
	ctx, span := e.start(ctx, "Add", attribute.String("business.id", in.BusinessID), attribute.Int("rating", in.Rating))
	defer span.End()

	now := e.stamp()
	f := models.Feedback{
		ID:         ident.NewID(),
		BusinessID: in.BusinessID,
		Rating:     in.Rating,
		Comment:    in.Comment,
		Name:       in.Name,
		Email:      in.Email,
		Photos:     in.Photos,
		Answers:    in.Answers,
		Source:     in.Source,
		State:      models.NewStatusState(),
		CreatedAt:  now,
		Activity: []models.Activity{
			e.activity(now, models.ActivityCreated, "Feedback received", models.CreatedDetail{Rating: in.Rating, Source: in.Source}),
		},
	}

	err := e.items.Mutate(ctx, func(items []models.Feedback) ([]models.Feedback, bool, error) {
		return append(items, f), true, nil
	})
	if err != nil {
		fail(span, err)
		return models.Feedback{}, err
	}
	e.count("Add", true)

	// The record is committed; failing here would make a job retry store it twice.
	if e.events != nil {
		if _, err := e.events.RecordInternal(ctx, f.BusinessID, f.Rating, f.Source); err != nil {
			span.RecordError(err)
			e.log.Error("internal event not recorded", map[string]interface{}{
				"feedbackId": f.ID,
				"businessId": f.BusinessID,
				"error":      err,
			})
		}
	}

	e.log.Info("feedback received", map[string]interface{}{
		"feedbackId": f.ID,
		"businessId": f.BusinessID,
		"rating":     f.Rating,
		"source":     f.Source,
	})
	return f, nil
}

// Get returns one record.
func (e *Engine) Get(ctx context.Context, id string) (models.Feedback, bool, error) {
	items, err := e.items.Load(ctx)
	if err != nil {
		return models.Feedback{}, false, err
	}
	for _, f := range items {
		if f.ID == id {
			return f, true, nil
		}
	}
	return models.Feedback{}, false, nil
}

// List returns the records of businessID (all when empty) in insertion order.
func (e *Engine) List(ctx context.Context, businessID string) ([]models.Feedback, error) {
	items, err := e.items.Load(ctx)
	if err != nil {
		return nil, err
	}
	if businessID == "" {
		return items, nil
	}
	out := make([]models.Feedback, 0, len(items))
	for _, f := range items {
		if f.BusinessID == businessID {
			out = append(out, f)
		}
	}
	return out, nil
}

// mutateOne applies fn to the record with id under the partition lock. fn
// reports whether it changed the record; nothing is written otherwise.
func (e *Engine) mutateOne(ctx context.Context, op, id string, fn func(f *models.Feedback, now time.Time) bool) (Result, error) {
	ctx, span := e.start(ctx, op, attribute.String("feedback.id", id))
	defer span.End()

	var res Result
	err := e.items.Mutate(ctx, func(items []models.Feedback) ([]models.Feedback, bool, error) {
		for i := range items {
			if items[i].ID == id {
				res.Found = true
				res.Mutated = fn(&items[i], e.stamp())
				return items, res.Mutated, nil
			}
		}
		return items, false, nil
	})
	if err != nil {
		fail(span, err)
		return Result{}, err
	}

	span.SetAttributes(attribute.Bool("found", res.Found), attribute.Bool("mutated", res.Mutated))
	e.count(op, res.Mutated)
	if !res.Found {
		e.log.Debug("feedback not found", map[string]interface{}{"op": op, "feedbackId": id})
	}
	return res, nil
}

func (e *Engine) activity(now time.Time, typ models.ActivityType, message string, detail models.ActivityDetail) models.Activity {
	return models.Activity{
		ID:        ident.NewID(),
		Type:      typ,
		Message:   message,
		CreatedAt: now,
		Detail:    detail,
	}
}

func (e *Engine) stamp() time.Time {
	return e.now().UTC()
}

func (e *Engine) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "feedback."+op, trace.WithAttributes(attrs...))
}

func (e *Engine) count(op string, mutated bool) {
	metrics.FeedbackMutations.WithLabelValues(op, metrics.Bool(mutated)).Inc()
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
