// Package events records the append-only scan, redirect and internal events
// that attribute review traffic to its source.
package events

import (
	"context"
	"sort"
	"time"

	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/metrics"
	"reviewgate/internal/ident"
	"reviewgate/internal/models"
	"reviewgate/internal/normalize"
	"reviewgate/internal/storage"
)

// Sink mirrors appended events to a secondary store.
type Sink interface {
	Index(ctx context.Context, event models.ReviewEvent) error
}

// Recorder appends to and reads from the events partition.
type Recorder struct {
	events *normalize.Collection[models.ReviewEvent]
	sink   Sink
	log    logger.Logger
	now    func() time.Time
}

// NewRecorder creates a Recorder. sink may be nil.
func NewRecorder(parts *storage.Partitions, sink Sink, log logger.Logger) *Recorder {
	return &Recorder{
		events: normalize.NewCollection(parts, storage.PartitionEvents, normalize.DecodeEvents),
		sink:   sink,
		log:    logger.Component(log, "events"),
		now:    time.Now,
	}
}

// RecordScan notes that a public review page was opened.
func (r *Recorder) RecordScan(ctx context.Context, businessID, source string) (models.ReviewEvent, error) {
	return r.record(ctx, businessID, models.EventScan, nil, source)
}

// RecordRedirect notes a rating that was sent on to the public platform.
func (r *Recorder) RecordRedirect(ctx context.Context, businessID string, rating int, source string) (models.ReviewEvent, error) {
	return r.record(ctx, businessID, models.EventRedirect, models.IntPtr(rating), source)
}

// RecordInternal notes a rating that was kept as internal feedback.
func (r *Recorder) RecordInternal(ctx context.Context, businessID string, rating int, source string) (models.ReviewEvent, error) {
	return r.record(ctx, businessID, models.EventInternal, models.IntPtr(rating), source)
}

func (r *Recorder) record(ctx context.Context, businessID string, typ models.EventType, rating *int, source string) (models.ReviewEvent, error) {
	event := models.ReviewEvent{
		ID:         ident.NewID(),
		BusinessID: businessID,
		Type:       typ,
		CreatedAt:  r.now().UTC(),
		Source:     source,
		Rating:     rating,
	}

	err := r.events.Mutate(ctx, func(items []models.ReviewEvent) ([]models.ReviewEvent, bool, error) {
		return append(items, event), true, nil
	})
	if err != nil {
		return models.ReviewEvent{}, err
	}
	metrics.ReviewEvents.WithLabelValues(string(typ)).Inc()

	if r.sink != nil {
		if err := r.sink.Index(ctx, event); err != nil {
			r.log.Warn("event mirror failed", map[string]interface{}{
				"eventId": event.ID,
				"type":    string(typ),
				"error":   err,
			})
		}
	}
	return event, nil
}

// List returns the events of businessID (all when empty), newest first.
// Events sharing a timestamp keep their insertion order.
func (r *Recorder) List(ctx context.Context, businessID string) ([]models.ReviewEvent, error) {
	items, err := r.events.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ReviewEvent, 0, len(items))
	for _, e := range items {
		if businessID == "" || e.BusinessID == businessID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
