package feedback

import (
	"context"

	"reviewgate/internal/models"
)

// Delete hard-deletes one record and returns it so the caller can offer undo.
func (e *Engine) Delete(ctx context.Context, id string) (models.Feedback, Result, error) {
	removed, err := e.BulkDelete(ctx, []string{id})
	if err != nil || len(removed) == 0 {
		return models.Feedback{}, Result{}, err
	}
	return removed[0], Result{Found: true, Mutated: true}, nil
}

// BulkDelete hard-deletes every existing id and returns the removed records.
// Unknown ids are ignored.
func (e *Engine) BulkDelete(ctx context.Context, ids []string) ([]models.Feedback, error) {
	ctx, span := e.start(ctx, "BulkDelete")
	defer span.End()

	want := idSet(ids)
	var removed []models.Feedback
	err := e.items.Mutate(ctx, func(items []models.Feedback) ([]models.Feedback, bool, error) {
		kept := make([]models.Feedback, 0, len(items))
		for _, f := range items {
			if want[f.ID] {
				removed = append(removed, f)
				continue
			}
			kept = append(kept, f)
		}
		return kept, len(removed) > 0, nil
	})
	if err != nil {
		fail(span, err)
		return nil, err
	}

	e.count("Delete", len(removed) > 0)
	if len(removed) > 0 {
		e.log.Info("feedback deleted", map[string]interface{}{"count": len(removed)})
	}
	return removed, nil
}

// Restore re-inserts previously removed records unchanged, keeping their ids.
// Records whose id is already present are skipped. It returns the number
// re-inserted.
func (e *Engine) Restore(ctx context.Context, records []models.Feedback) (int, error) {
	ctx, span := e.start(ctx, "Restore")
	defer span.End()

	restored := 0
	err := e.items.Mutate(ctx, func(items []models.Feedback) ([]models.Feedback, bool, error) {
		present := make(map[string]bool, len(items))
		for _, f := range items {
			present[f.ID] = true
		}
		for _, f := range records {
			if f.ID == "" || present[f.ID] {
				continue
			}
			present[f.ID] = true
			items = append(items, f)
			restored++
		}
		return items, restored > 0, nil
	})
	if err != nil {
		fail(span, err)
		return 0, err
	}
	e.count("Restore", restored > 0)
	return restored, nil
}
