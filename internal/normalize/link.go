package normalize

import "reviewgate/internal/models"

// Link decodes a stored link entry. Entries without an id or business are
// reported as unusable.
func Link(raw map[string]interface{}) (models.LinkEntry, bool) {
	l := models.LinkEntry{
		ID:         str(raw["id"]),
		BusinessID: str(raw["businessId"]),
		Label:      str(raw["label"]),
		Source:     str(raw["source"]),
		CreatedAt:  timestamp(raw["createdAt"]),
	}
	return l, l.ID != "" && l.BusinessID != ""
}

// Event decodes a stored review event. Events of an unknown type are
// reported as unusable.
func Event(raw map[string]interface{}) (models.ReviewEvent, bool) {
	e := models.ReviewEvent{
		ID:         str(raw["id"]),
		BusinessID: str(raw["businessId"]),
		Type:       models.EventType(str(raw["type"])),
		CreatedAt:  timestamp(raw["createdAt"]),
		Source:     str(raw["source"]),
	}
	if rating, ok := finiteInt(raw["rating"]); ok {
		e.Rating = models.IntPtr(rating)
	}
	return e, e.Type.Valid()
}
