package summarizeevents

import (
	"reviewgate/internal/events"
	"reviewgate/internal/models"
)

type Input struct {
	Session    models.Session `json:"session"`
	BusinessID string         `json:"businessId"`
	WindowDays int            `json:"windowDays"`
	Recent     int            `json:"recent"`
}

type Output struct {
	BusinessID string         `json:"businessId,omitempty"`
	WindowDays int            `json:"windowDays"`
	Summary    events.Summary `json:"summary"`
}
