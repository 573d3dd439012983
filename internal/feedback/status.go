package feedback

import (
	"context"
	"fmt"
	"time"

	"reviewgate/internal/models"
)

// UpdateStatus replaces the status of one record and logs the transition,
// including same-status transitions. Entering flagged suspends the prior
// status for Undo; any other target clears it.
func (e *Engine) UpdateStatus(ctx context.Context, id string, status models.Status) (Result, error) {
	return e.mutateOne(ctx, "UpdateStatus", id, func(f *models.Feedback, now time.Time) bool {
		e.setStatus(f, status, now)
		return true
	})
}

// Undo reinstates the suspended status (new when none) and logs it.
func (e *Engine) Undo(ctx context.Context, id string) (Result, error) {
	return e.mutateOne(ctx, "Undo", id, func(f *models.Feedback, now time.Time) bool {
		e.restore(f, now)
		return true
	})
}

// ToggleFlag undoes a flagged record and flags any other.
func (e *Engine) ToggleFlag(ctx context.Context, id string) (Result, error) {
	return e.mutateOne(ctx, "ToggleFlag", id, func(f *models.Feedback, now time.Time) bool {
		if f.Status() == models.StatusFlagged {
			e.restore(f, now)
		} else {
			e.setStatus(f, models.StatusFlagged, now)
		}
		return true
	})
}

func (e *Engine) setStatus(f *models.Feedback, next models.Status, now time.Time) {
	prev := f.Status()
	f.State = f.State.Set(next)
	f.UpdatedAt = now
	f.Prepend(e.activity(now, models.ActivityStatus,
		fmt.Sprintf("Status changed: %s → %s", prev, next),
		models.StatusDetail{From: prev, To: next}))
}

func (e *Engine) restore(f *models.Feedback, now time.Time) {
	from := f.Status()
	f.State = f.State.Restore()
	f.UpdatedAt = now
	f.Prepend(e.activity(now, models.ActivityStatus,
		fmt.Sprintf("Undo: %s → %s", from, f.Status()),
		models.StatusDetail{From: from, To: f.Status()}))
}

// MarkRead sets the read flag. Only an actual change is written and logged.
func (e *Engine) MarkRead(ctx context.Context, id string, isRead bool) (Result, error) {
	return e.mutateOne(ctx, "MarkRead", id, func(f *models.Feedback, now time.Time) bool {
		if f.IsRead == isRead {
			return false
		}
		f.IsRead = isRead
		f.UpdatedAt = now
		message := "Marked as unread"
		if isRead {
			message = "Marked as read"
		}
		f.Prepend(e.activity(now, models.ActivityRead, message, models.ReadDetail{IsRead: isRead}))
		return true
	})
}

// AddNote appends an operator note to the timeline.
func (e *Engine) AddNote(ctx context.Context, id, text string) (Result, error) {
	return e.mutateOne(ctx, "AddNote", id, func(f *models.Feedback, now time.Time) bool {
		f.UpdatedAt = now
		f.Prepend(e.activity(now, models.ActivityNote, "Note added", models.NoteDetail{Text: text}))
		return true
	})
}

// MarkAllRead marks every unread record of businessID (all when empty) as
// read. Bulk changes do not add activity entries. It returns the number of
// records changed.
func (e *Engine) MarkAllRead(ctx context.Context, businessID string) (int, error) {
	ctx, span := e.start(ctx, "MarkAllRead")
	defer span.End()

	changed := 0
	err := e.items.Mutate(ctx, func(items []models.Feedback) ([]models.Feedback, bool, error) {
		now := e.stamp()
		for i := range items {
			if (businessID == "" || items[i].BusinessID == businessID) && !items[i].IsRead {
				items[i].IsRead = true
				items[i].UpdatedAt = now
				changed++
			}
		}
		return items, changed > 0, nil
	})
	if err != nil {
		fail(span, err)
		return 0, err
	}
	e.count("MarkAllRead", changed > 0)
	return changed, nil
}

// BulkUpdateStatus sets status on every existing id and marks them read.
// A flag suspends the prior status as UpdateStatus does. Bulk changes do not
// add activity entries. It returns the number of records changed.
func (e *Engine) BulkUpdateStatus(ctx context.Context, ids []string, status models.Status) (int, error) {
	ctx, span := e.start(ctx, "BulkUpdateStatus")
	defer span.End()

	want := idSet(ids)
	changed := 0
	err := e.items.Mutate(ctx, func(items []models.Feedback) ([]models.Feedback, bool, error) {
		now := e.stamp()
		for i := range items {
			if !want[items[i].ID] {
				continue
			}
			items[i].State = items[i].State.Set(status)
			items[i].IsRead = true
			items[i].UpdatedAt = now
			changed++
		}
		return items, changed > 0, nil
	})
	if err != nil {
		fail(span, err)
		return 0, err
	}
	e.count("BulkUpdateStatus", changed > 0)
	return changed, nil
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
