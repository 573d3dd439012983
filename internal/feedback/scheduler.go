package feedback

import (
	"context"
	"sync"
	"time"

	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/metrics"
	"reviewgate/internal/models"
)

// DeleteScheduler runs the inbox undo window for deletions. Records are
// removed immediately and held in memory; Undo puts them back until the
// window closes, after which a final delete of the same ids runs.
//
// Batches are held per scope, one operator inbox each. Within a scope only
// one batch is held: scheduling a new one stops the previous timer and the
// previous batch can no longer be undone. Other scopes are unaffected.
type DeleteScheduler struct {
	engine *Engine
	window time.Duration
	log    logger.Logger

	mu    sync.Mutex
	gen   uint64
	slots map[string]*deleteSlot
}

type deleteSlot struct {
	gen     uint64
	timer   *time.Timer
	pending []models.Feedback
}

func NewDeleteScheduler(engine *Engine, window time.Duration, log logger.Logger) *DeleteScheduler {
	return &DeleteScheduler{
		engine: engine,
		window: window,
		log:    logger.Component(log, "delete-scheduler"),
		slots:  map[string]*deleteSlot{},
	}
}

// Delete removes ids now and holds the removed records in scope for the undo
// window.
func (s *DeleteScheduler) Delete(ctx context.Context, scope string, ids []string) ([]models.Feedback, error) {
	removed, err := s.engine.BulkDelete(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		s.Schedule(scope, removed)
	}
	return removed, nil
}

// Schedule holds records in scope and arms the final delete, replacing any
// batch the scope already holds.
func (s *DeleteScheduler) Schedule(scope string, records []models.Feedback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.takeLocked(scope)
	s.gen++
	gen := s.gen
	s.slots[scope] = &deleteSlot{
		gen:     gen,
		pending: append([]models.Feedback(nil), records...),
		timer:   time.AfterFunc(s.window, func() { s.fire(scope, gen) }),
	}
	s.gaugeLocked()
}

// Undo cancels the pending delete of scope and re-inserts its held records.
func (s *DeleteScheduler) Undo(ctx context.Context, scope string) (int, error) {
	s.mu.Lock()
	records := s.takeLocked(scope)
	s.mu.Unlock()

	if len(records) == 0 {
		return 0, nil
	}
	n, err := s.engine.Restore(ctx, records)
	if err != nil {
		return 0, err
	}
	s.log.Info("delete undone", map[string]interface{}{"scope": scope, "count": n})
	return n, nil
}

// Flush runs every pending final delete now.
func (s *DeleteScheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	var records []models.Feedback
	for scope := range s.slots {
		records = append(records, s.takeLocked(scope)...)
	}
	s.mu.Unlock()
	return s.finalize(ctx, records)
}

// Pending returns a copy of the records held in scope.
func (s *DeleteScheduler) Pending(scope string) []models.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[scope]
	if !ok {
		return nil
	}
	return append([]models.Feedback(nil), slot.pending...)
}

func (s *DeleteScheduler) fire(scope string, gen uint64) {
	s.mu.Lock()
	if slot, ok := s.slots[scope]; !ok || slot.gen != gen {
		s.mu.Unlock()
		return
	}
	records := s.takeLocked(scope)
	s.mu.Unlock()

	if err := s.finalize(context.Background(), records); err != nil {
		s.log.Error("final delete failed", map[string]interface{}{"scope": scope, "count": len(records), "error": err})
	}
}

func (s *DeleteScheduler) finalize(ctx context.Context, records []models.Feedback) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]string, len(records))
	for i, f := range records {
		ids[i] = f.ID
	}
	_, err := s.engine.BulkDelete(ctx, ids)
	return err
}

// takeLocked stops the timer of scope and releases its slot. A callback
// already running finds the slot gone or carrying a newer generation and
// returns without deleting.
func (s *DeleteScheduler) takeLocked(scope string) []models.Feedback {
	slot, ok := s.slots[scope]
	if !ok {
		return nil
	}
	slot.timer.Stop()
	delete(s.slots, scope)
	s.gaugeLocked()
	return slot.pending
}

func (s *DeleteScheduler) gaugeLocked() {
	n := 0
	for _, slot := range s.slots {
		n += len(slot.pending)
	}
	metrics.PendingDeletes.Set(float64(n))
}
