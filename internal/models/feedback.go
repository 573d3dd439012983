// internal/models/feedback.go
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the inbox classification of a feedback record.
type Status string

const (
	StatusNew      Status = "new"
	StatusResolved Status = "resolved"
	StatusFlagged  Status = "flagged"
	StatusSpam     Status = "spam"
	StatusDeleted  Status = "deleted"
	// StatusReviewed only appears in data written by older releases.
	StatusReviewed Status = "reviewed"
)

// ParseStatus maps a stored value onto a known status. Unknown or empty
// values become StatusNew.
func ParseStatus(s string) Status {
	switch st := Status(s); st {
	case StatusNew, StatusResolved, StatusFlagged, StatusSpam, StatusDeleted, StatusReviewed:
		return st
	}
	return StatusNew
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return ParseStatus(string(s)) == s && s != ""
}

// StatusState pairs the current status with the status it suspended when it
// entered StatusFlagged. Suspended is empty unless Current is StatusFlagged.
type StatusState struct {
	Current   Status
	Suspended Status
}

// NewStatusState is the state of a freshly created record.
func NewStatusState() StatusState {
	return StatusState{Current: StatusNew}
}

// Set moves to next. Entering StatusFlagged from another status suspends the
// current one; leaving StatusFlagged drops any suspended status.
func (s StatusState) Set(next Status) StatusState {
	switch {
	case next == StatusFlagged && s.Current != StatusFlagged:
		return StatusState{Current: StatusFlagged, Suspended: s.Current}
	case next == StatusFlagged:
		return s
	default:
		return StatusState{Current: next}
	}
}

// Restore returns the state after undoing a flag. The suspended status is
// reinstated, defaulting to StatusNew when none was captured.
func (s StatusState) Restore() StatusState {
	prev := s.Suspended
	if prev == "" {
		prev = StatusNew
	}
	return StatusState{Current: prev}
}

// Answer is a response to a low-rating question: a single option or a list.
type Answer struct {
	Values []string
	Multi  bool
}

func SingleAnswer(v string) Answer {
	return Answer{Values: []string{v}}
}

func MultiAnswer(v ...string) Answer {
	return Answer{Values: v, Multi: true}
}

func (a Answer) String() string {
	if len(a.Values) == 0 {
		return ""
	}
	if !a.Multi {
		return a.Values[0]
	}
	return fmt.Sprintf("%v", a.Values)
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Multi {
		if a.Values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Values)
	}
	if len(a.Values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(a.Values[0])
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = SingleAnswer(single)
		return nil
	}
	var multi []string
	if err := json.Unmarshal(data, &multi); err != nil {
		return fmt.Errorf("answer must be a string or list of strings: %w", err)
	}
	*a = MultiAnswer(multi...)
	return nil
}

// Feedback is a low-rating submission kept for the business operator.
// Activity is ordered newest first.
type Feedback struct {
	ID         string
	BusinessID string
	Rating     int
	Comment    string
	Name       string
	Email      string
	Photos     []string
	Answers    map[string]Answer
	Source     string
	State      StatusState
	IsRead     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Activity   []Activity
}

// Status is shorthand for State.Current.
func (f Feedback) Status() Status {
	return f.State.Current
}

// PreviousStatus is shorthand for State.Suspended.
func (f Feedback) PreviousStatus() Status {
	return f.State.Suspended
}

// Prepend adds an activity entry to the front of the timeline.
func (f *Feedback) Prepend(a Activity) {
	f.Activity = append([]Activity{a}, f.Activity...)
}

type feedbackWire struct {
	ID             string            `json:"id"`
	BusinessID     string            `json:"businessId"`
	Rating         int               `json:"rating"`
	Comment        string            `json:"comment"`
	Name           string            `json:"name,omitempty"`
	Email          string            `json:"email,omitempty"`
	Photos         []string          `json:"photos,omitempty"`
	Answers        map[string]Answer `json:"answers,omitempty"`
	Source         string            `json:"source,omitempty"`
	Status         Status            `json:"status"`
	PreviousStatus Status            `json:"previousStatus,omitempty"`
	IsRead         bool              `json:"isRead"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      *time.Time        `json:"updatedAt,omitempty"`
	Activity       []Activity        `json:"activity"`
}

func (f Feedback) MarshalJSON() ([]byte, error) {
	w := feedbackWire{
		ID:             f.ID,
		BusinessID:     f.BusinessID,
		Rating:         f.Rating,
		Comment:        f.Comment,
		Name:           f.Name,
		Email:          f.Email,
		Photos:         f.Photos,
		Answers:        f.Answers,
		Source:         f.Source,
		Status:         f.State.Current,
		PreviousStatus: f.State.Suspended,
		IsRead:         f.IsRead,
		CreatedAt:      f.CreatedAt,
		Activity:       f.Activity,
	}
	if w.Activity == nil {
		w.Activity = []Activity{}
	}
	if !f.UpdatedAt.IsZero() {
		updated := f.UpdatedAt
		w.UpdatedAt = &updated
	}
	return json.Marshal(w)
}

func (f *Feedback) UnmarshalJSON(data []byte) error {
	var w feedbackWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	state := StatusState{Current: ParseStatus(string(w.Status))}
	if state.Current == StatusFlagged && w.PreviousStatus != "" {
		state.Suspended = ParseStatus(string(w.PreviousStatus))
	}
	*f = Feedback{
		ID:         w.ID,
		BusinessID: w.BusinessID,
		Rating:     w.Rating,
		Comment:    w.Comment,
		Name:       w.Name,
		Email:      w.Email,
		Photos:     w.Photos,
		Answers:    w.Answers,
		Source:     w.Source,
		State:      state,
		IsRead:     w.IsRead,
		CreatedAt:  w.CreatedAt,
		Activity:   w.Activity,
	}
	if w.UpdatedAt != nil {
		f.UpdatedAt = *w.UpdatedAt
	}
	if f.Activity == nil {
		f.Activity = []Activity{}
	}
	return nil
}

// NewFeedback is the input accepted when a customer submits feedback.
type NewFeedback struct {
	BusinessID string
	Rating     int
	Comment    string
	Name       string
	Email      string
	Photos     []string
	Answers    map[string]Answer
	Source     string
}
