// internal/models/activity.go
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActivityType names an entry on a feedback timeline.
type ActivityType string

const (
	ActivityCreated ActivityType = "created"
	ActivityRead    ActivityType = "read"
	ActivityStatus  ActivityType = "status"
	ActivityEmail   ActivityType = "email"
	ActivityNote    ActivityType = "note"
	ActivityDelete  ActivityType = "delete"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityCreated, ActivityRead, ActivityStatus, ActivityEmail, ActivityNote, ActivityDelete:
		return true
	}
	return false
}

// ActivityDetail is the typed payload of an activity entry. Each variant
// belongs to exactly one ActivityType.
type ActivityDetail interface {
	Kind() ActivityType
}

type CreatedDetail struct {
	Rating int    `json:"rating"`
	Source string `json:"source,omitempty"`
}

type StatusDetail struct {
	From Status `json:"from"`
	To   Status `json:"to"`
}

type ReadDetail struct {
	IsRead bool `json:"isRead"`
}

type EmailDetail struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type NoteDetail struct {
	Text string `json:"text"`
}

type DeleteDetail struct{}

func (CreatedDetail) Kind() ActivityType { return ActivityCreated }
func (StatusDetail) Kind() ActivityType  { return ActivityStatus }
func (ReadDetail) Kind() ActivityType    { return ActivityRead }
func (EmailDetail) Kind() ActivityType   { return ActivityEmail }
func (NoteDetail) Kind() ActivityType    { return ActivityNote }
func (DeleteDetail) Kind() ActivityType  { return ActivityDelete }

// Activity is one timeline entry. Detail may be nil for entries persisted
// without metadata.
type Activity struct {
	ID        string
	Type      ActivityType
	Message   string
	CreatedAt time.Time
	Detail    ActivityDetail
}

type activityWire struct {
	ID        string          `json:"id"`
	Type      ActivityType    `json:"type"`
	Message   string          `json:"message"`
	CreatedAt time.Time       `json:"createdAt"`
	Meta      json.RawMessage `json:"meta,omitempty"`
}

func (a Activity) MarshalJSON() ([]byte, error) {
	w := activityWire{
		ID:        a.ID,
		Type:      a.Type,
		Message:   a.Message,
		CreatedAt: a.CreatedAt,
	}
	if a.Detail != nil {
		meta, err := json.Marshal(a.Detail)
		if err != nil {
			return nil, err
		}
		w.Meta = meta
	}
	return json.Marshal(w)
}

func (a *Activity) UnmarshalJSON(data []byte) error {
	var w activityWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Type.Valid() {
		return fmt.Errorf("unknown activity type %q", w.Type)
	}

	detail, err := DecodeDetail(w.Type, w.Meta)
	if err != nil {
		return fmt.Errorf("activity %s meta: %w", w.ID, err)
	}

	*a = Activity{
		ID:        w.ID,
		Type:      w.Type,
		Message:   w.Message,
		CreatedAt: w.CreatedAt,
		Detail:    detail,
	}
	return nil
}

// DecodeDetail decodes the meta payload of an activity of type t. Empty or
// null meta yields a nil detail.
func DecodeDetail(t ActivityType, meta json.RawMessage) (ActivityDetail, error) {
	if len(meta) == 0 || string(meta) == "null" {
		return nil, nil
	}
	switch t {
	case ActivityCreated:
		var d CreatedDetail
		if err := json.Unmarshal(meta, &d); err != nil {
			return nil, err
		}
		return d, nil
	case ActivityStatus:
		var d StatusDetail
		if err := json.Unmarshal(meta, &d); err != nil {
			return nil, err
		}
		d.From, d.To = ParseStatus(string(d.From)), ParseStatus(string(d.To))
		return d, nil
	case ActivityRead:
		var d ReadDetail
		if err := json.Unmarshal(meta, &d); err != nil {
			return nil, err
		}
		return d, nil
	case ActivityEmail:
		var d EmailDetail
		if err := json.Unmarshal(meta, &d); err != nil {
			return nil, err
		}
		return d, nil
	case ActivityNote:
		var d NoteDetail
		if err := json.Unmarshal(meta, &d); err != nil {
			return nil, err
		}
		return d, nil
	default:
		return DeleteDetail{}, nil
	}
}
