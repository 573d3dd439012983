package sendreply

import (
	"time"

	"reviewgate/internal/models"
)

type Input struct {
	FeedbackID string         `json:"feedbackId"`
	To         string         `json:"to"`
	Message    string         `json:"message"`
	Session    models.Session `json:"session"`
}

type Output struct {
	FeedbackID  string    `json:"feedbackId"`
	ActivityID  string    `json:"activityId"`
	To          string    `json:"to"`
	Delivered   bool      `json:"delivered"`
	Resolved    bool      `json:"resolved"`
	CompletedAt time.Time `json:"completedAt"`
}
