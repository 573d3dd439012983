package normalize

import (
	"encoding/json"

	"reviewgate/internal/models"
)

// Feedback decodes a loosely-shaped stored feedback record. Only the
// canonical fields survive. Activity entries that are not objects or carry an
// unknown type are dropped; other malformed entries keep their readable
// fields.
func Feedback(raw map[string]interface{}) models.Feedback {
	f := models.Feedback{
		ID:         str(raw["id"]),
		BusinessID: str(raw["businessId"]),
		Comment:    str(raw["comment"]),
		Name:       str(raw["name"]),
		Email:      str(raw["email"]),
		Photos:     stringList(raw["photos"]),
		Source:     str(raw["source"]),
		IsRead:     truthy(raw["isRead"]),
		CreatedAt:  timestamp(raw["createdAt"]),
		UpdatedAt:  timestamp(raw["updatedAt"]),
	}
	if len(f.Photos) == 0 {
		f.Photos = nil
	}

	if rating, ok := finiteInt(raw["rating"]); ok {
		f.Rating = rating
	}

	f.State = models.StatusState{Current: models.ParseStatus(str(raw["status"]))}
	if f.State.Current == models.StatusFlagged {
		if prev := str(raw["previousStatus"]); prev != "" {
			f.State.Suspended = models.ParseStatus(prev)
		}
	}

	if answers := object(raw["answers"]); answers != nil {
		f.Answers = make(map[string]models.Answer, len(answers))
		for key, v := range answers {
			switch t := v.(type) {
			case string:
				f.Answers[key] = models.SingleAnswer(t)
			case []interface{}:
				f.Answers[key] = models.MultiAnswer(stringList(t)...)
			}
		}
		if len(f.Answers) == 0 {
			f.Answers = nil
		}
	}

	f.Activity = activity(raw["activity"])
	return f
}

func activity(v interface{}) []models.Activity {
	entries, ok := v.([]interface{})
	if !ok {
		return []models.Activity{}
	}
	out := make([]models.Activity, 0, len(entries))
	for _, entry := range entries {
		m := object(entry)
		if m == nil {
			continue
		}
		if a, ok := activityEntry(m); ok {
			out = append(out, a)
		}
	}
	return out
}

func activityEntry(m map[string]interface{}) (models.Activity, bool) {
	if data, err := json.Marshal(m); err == nil {
		var a models.Activity
		if err := json.Unmarshal(data, &a); err == nil {
			return a, true
		}
	}

	typ := models.ActivityType(str(m["type"]))
	if !typ.Valid() {
		return models.Activity{}, false
	}
	a := models.Activity{
		ID:        str(m["id"]),
		Type:      typ,
		Message:   str(m["message"]),
		CreatedAt: timestamp(m["createdAt"]),
	}
	// meta of the wrong shape is left out
	if meta, err := json.Marshal(m["meta"]); err == nil {
		if d, err := models.DecodeDetail(typ, meta); err == nil {
			a.Detail = d
		}
	}
	return a, true
}
