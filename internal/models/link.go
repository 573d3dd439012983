// internal/models/link.go
package models

import "time"

// LinkEntry is a labelled attribution source (a QR code on a table, an email
// footer link) for one business.
type LinkEntry struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"businessId"`
	Label      string    `json:"label"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"createdAt"`
}

// EventType classifies a ReviewEvent.
type EventType string

const (
	EventScan     EventType = "scan"
	EventRedirect EventType = "redirect"
	EventInternal EventType = "internal"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventScan, EventRedirect, EventInternal:
		return true
	}
	return false
}

// ReviewEvent is an append-only analytics record.
type ReviewEvent struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"businessId"`
	Type       EventType `json:"type"`
	CreatedAt  time.Time `json:"createdAt"`
	Source     string    `json:"source,omitempty"`
	Rating     *int      `json:"rating,omitempty"`
}

// RatingValue returns the rating and whether one was recorded.
func (e ReviewEvent) RatingValue() (int, bool) {
	if e.Rating == nil {
		return 0, false
	}
	return *e.Rating, true
}

// IntPtr is a small helper for optional ratings.
func IntPtr(v int) *int {
	return &v
}
